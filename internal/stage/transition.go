package stage

import (
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
)

// Guard is a precondition attached to an edge. The store evaluates the same
// guard inside the conditional write that moves the stage.
type Guard int

const (
	GuardNone Guard = iota
	GuardLedgerTransaction
	GuardBothAccepted
	GuardDocumentsShared
	GuardBothVerified
	GuardAssigned
	GuardReceipt
	GuardComment
	GuardNotAccepted
)

// Evidence is the record state a guard is evaluated against.
type Evidence struct {
	LedgerTransactionID string
	BuyerAccepted       bool
	SellerAccepted      bool
	SharedDocuments     int
	BuyerVerified       bool
	SellerVerified      bool
	AssignedOfficial    string
	ReceiptHash         string
	Comment             string
	// DeclinerAccepted is set when the party declining has already accepted.
	DeclinerAccepted bool
}

func (g Guard) Satisfied(ev Evidence) bool {
	switch g {
	case GuardNone:
		return true
	case GuardLedgerTransaction:
		return ev.LedgerTransactionID != ""
	case GuardBothAccepted:
		return ev.BuyerAccepted && ev.SellerAccepted
	case GuardDocumentsShared:
		return ev.SharedDocuments > 0
	case GuardBothVerified:
		return ev.BuyerVerified && ev.SellerVerified
	case GuardAssigned:
		return ev.AssignedOfficial != ""
	case GuardReceipt:
		return ev.ReceiptHash != ""
	case GuardComment:
		return strings.TrimSpace(ev.Comment) != ""
	case GuardNotAccepted:
		return strings.TrimSpace(ev.Comment) != "" && !ev.DeclinerAccepted
	}

	return false
}

func (g Guard) String() string {
	switch g {
	case GuardLedgerTransaction:
		return "ledger transaction id is required"
	case GuardBothAccepted:
		return "both buyer and seller must accept"
	case GuardDocumentsShared:
		return "at least one document must be shared"
	case GuardBothVerified:
		return "both buyer and seller must verify the documents"
	case GuardAssigned:
		return "an official must be assigned"
	case GuardReceipt:
		return "ledger receipt is required"
	case GuardComment:
		return "a comment is required"
	case GuardNotAccepted:
		return "a comment is required and the party must not have accepted"
	}

	return "none"
}

type edge struct {
	to    Stage
	roles []actor.Role
	guard Guard
}

var table = map[Stage][]edge{
	Initiated: {
		{to: AwaitingSignatures, roles: []actor.Role{actor.RoleIntermediary}, guard: GuardLedgerTransaction},
	},
	AwaitingSignatures: {
		{to: DocsShared, roles: []actor.Role{actor.RoleBuyer, actor.RoleSeller}, guard: GuardBothAccepted},
		{to: Rejected, roles: []actor.Role{actor.RoleBuyer, actor.RoleSeller}, guard: GuardNotAccepted},
	},
	DocsShared: {
		{to: AwaitingVerification, roles: []actor.Role{actor.RoleIntermediary}, guard: GuardDocumentsShared},
	},
	AwaitingVerification: {
		{to: Verified, roles: []actor.Role{actor.RoleBuyer, actor.RoleSeller}, guard: GuardBothVerified},
		{to: Rejected, roles: []actor.Role{actor.RoleIntermediary}, guard: GuardComment},
	},
	Verified: {
		{to: UnderReview, roles: []actor.Role{actor.RoleOfficial}, guard: GuardAssigned},
	},
	UnderReview: {
		{to: Finalized, roles: []actor.Role{actor.RoleOfficial}, guard: GuardReceipt},
		{to: Rejected, roles: []actor.Role{actor.RoleOfficial}, guard: GuardComment},
	},
}

func find(from, to Stage) (edge, bool) {
	for _, e := range table[from] {
		if e.to == to {
			return e, true
		}
	}

	return edge{}, false
}

// GuardFor returns the guard of the edge from -> to.
func GuardFor(from, to Stage) (Guard, bool) {
	e, ok := find(from, to)
	return e.guard, ok
}

// Successors lists the stages reachable from s in one step.
func Successors(s Stage) []Stage {
	out := make([]Stage, 0, len(table[s]))
	for _, e := range table[s] {
		out = append(out, e.to)
	}

	return out
}

// Transition validates a request to move from current to requested on behalf
// of role. A request for a stage already reached returns current unchanged.
func Transition(current, requested Stage, role actor.Role, ev Evidence) (Stage, error) {
	if !current.Valid() || !requested.Valid() {
		return current, &TransitionError{From: current, To: requested, Reason: "unknown stage"}
	}

	if current.Reached(requested) {
		return current, nil
	}

	if current.IsTerminal() {
		return current, &TransitionError{From: current, To: requested, Reason: "stage is terminal"}
	}

	e, ok := find(current, requested)
	if !ok {
		return current, &TransitionError{From: current, To: requested, Reason: "not a successor"}
	}

	if !slices.Contains(e.roles, role) {
		return current, &TransitionError{From: current, To: requested, Reason: "role " + string(role) + " may not request it"}
	}

	if !e.guard.Satisfied(ev) {
		return current, &TransitionError{From: current, To: requested, Reason: e.guard.String()}
	}

	return requested, nil
}
