// Package event fans out record changes to in-process subscribers. Writers
// publish asynchronously so a slow subscriber never holds up a conditional write.
package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	SubscriberQueueSize = 32
	AsyncQueueSize      = 1000
	AsyncWorkerPoolSize = 4
)

type Type string

const (
	TypeStageChanged       Type = "transaction.stage_changed"
	TypePartyAccepted      Type = "transaction.party_accepted"
	TypeDocumentsShared    Type = "transaction.documents_shared"
	TypeDocumentsVerified  Type = "transaction.documents_verified"
	TypeItemClaimed        Type = "assignment.claimed"
	TypePropertyReviewed   Type = "property.reviewed"
	TypeApplicationReview  Type = "application.reviewed"
	TypeLedgerCommitted    Type = "ledger.committed"
	TypeReconcilePending   Type = "ledger.reconciliation_pending"
	TypeReconcileCompleted Type = "ledger.reconciliation_resolved"
)

// Types lists every type the core publishes.
var Types = []Type{
	TypeStageChanged,
	TypePartyAccepted,
	TypeDocumentsShared,
	TypeDocumentsVerified,
	TypeItemClaimed,
	TypePropertyReviewed,
	TypeApplicationReview,
	TypeLedgerCommitted,
	TypeReconcilePending,
	TypeReconcileCompleted,
}

type SubscriberID int

type HandlerFunc func(Event)

// Notification is the payload carried by every event: who should hear about
// the change and where to look.
type Notification struct {
	RecordID   uuid.UUID `json:"record_id"`
	Recipients []string  `json:"recipients,omitempty"`
	Message    string    `json:"message"`
	Link       string    `json:"link,omitempty"`
	Detail     any       `json:"detail,omitempty"`
}

type Event struct {
	Type      Type         `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      Notification `json:"data"`
}

func New(t Type, n Notification) Event {
	return Event{Type: t, Timestamp: time.Now().UTC(), Data: n}
}

// Publisher is what producers depend on.
type Publisher interface {
	PublishAsync(t Type, evt Event) bool
}

type subscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// deliver never blocks; a full subscriber queue drops the event.
func (s *subscriber) deliver(evt Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return true
	}

	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	close(s.ch)
}

type asyncEvent struct {
	t   Type
	evt Event
}

type EventBus struct {
	subscribers map[Type]map[SubscriberID]*subscriber
	lastID      SubscriberID
	mu          sync.RWMutex
	metrics     *metrics
	logger      *slog.Logger

	queue    chan asyncEvent
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopped  bool
	stopMu   sync.RWMutex
	stopOnce sync.Once
}

// NewEventBus starts the async worker pool. A nil registry disables metrics.
func NewEventBus(reg prometheus.Registerer, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &EventBus{
		subscribers: make(map[Type]map[SubscriberID]*subscriber),
		logger:      logger,
		queue:       make(chan asyncEvent, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if reg != nil {
		e.metrics = newMetrics(reg)
	}

	for range AsyncWorkerPoolSize {
		e.wg.Add(1)

		go e.worker()
	}

	return e
}

func (e *EventBus) worker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.stopCh:
			return
		case ae := <-e.queue:
			e.Publish(ae.t, ae.evt)
		}
	}
}

// Subscribe returns a channel receiving events of type t until Unsubscribe or Stop.
func (e *EventBus) Subscribe(t Type) (SubscriberID, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, SubscriberQueueSize)}

	e.lastID++
	id := e.lastID

	if _, ok := e.subscribers[t]; !ok {
		e.subscribers[t] = make(map[SubscriberID]*subscriber)
	}

	e.subscribers[t][id] = sub

	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(t)).Inc()
	}

	return id, sub.ch
}

// SubscribeFunc runs fn for every event of type t on its own goroutine.
func (e *EventBus) SubscribeFunc(t Type, fn HandlerFunc) SubscriberID {
	id, ch := e.Subscribe(t)

	go func() {
		for evt := range ch {
			fn(evt)
		}
	}()

	return id
}

// Unsubscribe cancels a subscription and closes its channel.
func (e *EventBus) Unsubscribe(t Type, id SubscriberID) {
	e.mu.Lock()

	var sub *subscriber

	if subs, ok := e.subscribers[t]; ok {
		sub = subs[id]
		delete(subs, id)

		if len(subs) == 0 {
			delete(e.subscribers, t)
		}
	}
	e.mu.Unlock()

	if sub == nil {
		return
	}

	sub.close()

	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(t)).Dec()
	}
}

// Publish delivers evt to the current subscribers of t.
func (e *EventBus) Publish(t Type, evt Event) {
	e.mu.RLock()
	subs := make([]*subscriber, 0, len(e.subscribers[t]))
	for _, sub := range e.subscribers[t] {
		subs = append(subs, sub)
	}
	e.mu.RUnlock()

	for _, sub := range subs {
		if !sub.deliver(evt) {
			e.logger.Debug("subscriber queue full, dropping event", "type", t)

			if e.metrics != nil {
				e.metrics.dropped.WithLabelValues(string(t), "subscriber").Inc()
			}
		}
	}

	if e.metrics != nil {
		e.metrics.events.WithLabelValues(string(t)).Inc()
	}
}

// PublishAsync enqueues evt and returns immediately. It reports false when
// the bus is stopped or the queue is full.
func (e *EventBus) PublishAsync(t Type, evt Event) bool {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()

	if e.stopped {
		return false
	}

	select {
	case e.queue <- asyncEvent{t: t, evt: evt}:
		return true
	default:
		e.logger.Warn("async event queue full, dropping event", "type", t)

		if e.metrics != nil {
			e.metrics.dropped.WithLabelValues(string(t), "async").Inc()
		}

		return false
	}
}

// Stop halts the workers and closes every subscriber channel.
func (e *EventBus) Stop() {
	e.stopOnce.Do(func() {
		e.stopMu.Lock()
		e.stopped = true
		e.stopMu.Unlock()

		close(e.stopCh)
		e.wg.Wait()

		e.mu.Lock()
		subs := e.subscribers
		e.subscribers = make(map[Type]map[SubscriberID]*subscriber)
		e.mu.Unlock()

		for _, byID := range subs {
			for _, sub := range byID {
				sub.close()
			}
		}

		if e.metrics != nil {
			e.metrics.subscribers.Reset()
		}
	})
}
