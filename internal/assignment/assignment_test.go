package assignment_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
)

// pool claims items with a compare-and-set, like the stores do.
type pool struct {
	mu       sync.Mutex
	assigned map[uuid.UUID]string
}

func (p *pool) Claim(_ context.Context, id uuid.UUID, official actor.Actor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if holder, ok := p.assigned[id]; ok {
		return assignment.Outcome(holder, official.ID, id)
	}

	p.assigned[id] = official.ID

	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) PublishAsync(_ event.Type, e event.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)

	return true
}

func TestParseKind(t *testing.T) {
	k, err := assignment.ParseKind(" Property ")
	require.NoError(t, err)
	assert.Equal(t, assignment.KindProperty, k)

	_, err = assignment.ParseKind("invoice")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestOutcome(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, assignment.Outcome("official-1", "official-1", id))

	err := assignment.Outcome("official-1", "official-2", id)
	assert.True(t, errors.Is(err, assignment.ErrAlreadyClaimed))
	assert.True(t, errors.Is(err, apperr.ErrConcurrency))
}

func TestLock_Claim(t *testing.T) {
	tests := []struct {
		name    string
		kind    assignment.Kind
		claimer actor.Actor
		want    error
	}{
		{name: "official claims", kind: assignment.KindProperty, claimer: actor.New("official-1", actor.RoleOfficial)},
		{name: "non official", kind: assignment.KindProperty, claimer: actor.New("buyer-1", actor.RoleBuyer), want: apperr.ErrForbidden},
		{name: "unregistered kind", kind: assignment.KindApplication, claimer: actor.New("official-1", actor.RoleOfficial), want: apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &recorder{}
			lock := assignment.NewLock(events)
			lock.Register(assignment.KindProperty, &pool{assigned: map[uuid.UUID]string{}})

			err := lock.Claim(context.Background(), tt.kind, uuid.New(), tt.claimer)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
				assert.Empty(t, events.events)

				return
			}

			require.NoError(t, err)
			assert.Len(t, events.events, 1)
		})
	}
}

func TestLock_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	lock := assignment.NewLock(nil)
	lock.Register(assignment.KindTransaction, &pool{assigned: map[uuid.UUID]string{}})

	id := uuid.New()

	const n = 16

	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			official := actor.New(uuid.NewString(), actor.RoleOfficial)
			errs[i] = lock.Claim(context.Background(), assignment.KindTransaction, id, official)
		})
	}

	wg.Wait()

	won, lost := 0, 0

	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, assignment.ErrAlreadyClaimed):
			lost++
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
}
