// Package assignment hands pooled review items to exactly one official. The
// claim itself is a conditional write owned by each item's repository; this
// package routes claims by item kind and defines the shared outcome.
package assignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
)

type Kind string

const (
	KindTransaction Kind = "transaction"
	KindProperty    Kind = "property"
	KindApplication Kind = "application"
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindTransaction, KindProperty, KindApplication:
		return k, nil
	}

	return "", apperr.Validation("unknown item kind %q", s)
}

// ErrAlreadyClaimed is returned to every claimant but the one whose write won.
var ErrAlreadyClaimed = fmt.Errorf("%w: already claimed", apperr.ErrConcurrency)

// Outcome explains a claim that found the item assigned: a re-claim by the
// holder is a no-op, anyone else loses.
func Outcome(assigned, claimant string, id uuid.UUID) error {
	if assigned == claimant {
		return nil
	}

	return fmt.Errorf("%w: item %s is assigned to %s", ErrAlreadyClaimed, id, assigned)
}

// Claimer is implemented by every service whose items sit in a pool.
type Claimer interface {
	Claim(ctx context.Context, id uuid.UUID, official actor.Actor) error
}

type Lock struct {
	claimers map[Kind]Claimer
	events   event.Publisher
}

func NewLock(events event.Publisher) *Lock {
	return &Lock{claimers: make(map[Kind]Claimer), events: events}
}

func (l *Lock) Register(kind Kind, c Claimer) {
	l.claimers[kind] = c
}

// Claim assigns the item to official. Exactly one of any number of concurrent
// claims succeeds.
func (l *Lock) Claim(ctx context.Context, kind Kind, id uuid.UUID, official actor.Actor) error {
	if official.Role != actor.RoleOfficial || strings.TrimSpace(official.ID) == "" {
		return apperr.Forbidden("only officials can claim review items")
	}

	c, ok := l.claimers[kind]
	if !ok {
		return apperr.Validation("no pool for item kind %q", kind)
	}

	if err := c.Claim(ctx, id, official); err != nil {
		return err
	}

	if l.events != nil {
		l.events.PublishAsync(event.TypeItemClaimed, event.New(event.TypeItemClaimed, event.Notification{
			RecordID:   id,
			Recipients: []string{official.ID},
			Message:    fmt.Sprintf("%s claimed by %s", kind, official.ID),
			Detail:     map[string]string{"kind": string(kind), "official": official.ID},
		}))
	}

	return nil
}
