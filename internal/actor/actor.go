// Package actor describes who is calling into the core. Every operation takes
// the actor explicitly; nothing is read from ambient session state.
package actor

import "strings"

// Role is the role an actor plays for the record being acted on.
type Role string

const (
	RoleBuyer        Role = "buyer"
	RoleSeller       Role = "seller"
	RoleIntermediary Role = "intermediary"
	RoleOfficial     Role = "official"
)

type Actor struct {
	ID            string
	Role          Role
	WalletAddress string
}

func New(id string, role Role) Actor {
	return Actor{ID: id, Role: role}
}

func (a Actor) WithWallet(address string) Actor {
	a.WalletAddress = address
	return a
}

func (a Actor) Valid() bool {
	if strings.TrimSpace(a.ID) == "" {
		return false
	}

	switch a.Role {
	case RoleBuyer, RoleSeller, RoleIntermediary, RoleOfficial:
		return true
	}

	return false
}
