package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrJamesThe3rd/titledeed/internal/event"
)

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	recordID := uuid.New()
	_, ch := eb.Subscribe(event.TypeStageChanged)

	eb.Publish(event.TypeStageChanged, event.New(event.TypeStageChanged, event.Notification{
		RecordID: recordID,
		Message:  "Transaction moved to Docs Shared",
	}))

	select {
	case evt, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, event.TypeStageChanged, evt.Type)
		assert.Equal(t, recordID, evt.Data.RecordID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBus_OtherTypesAreNotDelivered(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	_, ch := eb.Subscribe(event.TypeItemClaimed)
	eb.Publish(event.TypeStageChanged, event.New(event.TypeStageChanged, event.Notification{}))

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %v", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_UnsubscribeClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	id, ch := eb.Subscribe(event.TypeLedgerCommitted)
	eb.Unsubscribe(event.TypeLedgerCommitted, id)

	_, ok := <-ch
	assert.False(t, ok)

	// publishing after cancel must not panic
	eb.Publish(event.TypeLedgerCommitted, event.New(event.TypeLedgerCommitted, event.Notification{}))
	eb.Unsubscribe(event.TypeLedgerCommitted, id)
}

func TestEventBus_PublishAsyncReachesSubscribeFunc(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := event.NewEventBus(nil, nil)

	var got atomic.Int32

	eb.SubscribeFunc(event.TypePartyAccepted, func(event.Event) {
		got.Add(1)
	})

	for range 5 {
		require.True(t, eb.PublishAsync(event.TypePartyAccepted, event.New(event.TypePartyAccepted, event.Notification{})))
	}

	require.Eventually(t, func() bool { return got.Load() == 5 }, time.Second, 5*time.Millisecond)

	eb.Stop()
	assert.False(t, eb.PublishAsync(event.TypePartyAccepted, event.New(event.TypePartyAccepted, event.Notification{})))
}

func TestEventBus_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()

	_, _ = eb.Subscribe(event.TypeDocumentsShared)

	done := make(chan struct{})

	go func() {
		for range event.SubscriberQueueSize + 10 {
			eb.Publish(event.TypeDocumentsShared, event.New(event.TypeDocumentsShared, event.Notification{}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	dropped, err := testutil.GatherAndCount(reg, "titledeed_events_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
}
