// Package eventbus is a synchronous in-process publish/subscribe bus used by
// the client core for cache change notifications and analytics events.
package eventbus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType identifies an event.
type EventType string

// Event types published by the client core.
const (
	CacheChanged    EventType = "cache.changed"
	FeatureDenied   EventType = "feature.denied"
	FlagsUpdated    EventType = "flags.updated"
	PlanChanged     EventType = "plan.changed"
	SessionCleared  EventType = "session.cleared"
	PurchaseSettled EventType = "purchase.settled"
)

// Event is the envelope delivered to handlers.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent stamps an event with the current time.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

// Context returns the context the event was published with.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the typed envelope passed to SubscribeTyped handlers.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

// Context returns the context the event was published with.
func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type handler func(Event) error

// Bus dispatches events to subscribers in registration order. It is safe for
// concurrent use; handlers run on the publishing goroutine.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[uint64]handler
	nextID      uint64
	log         *zap.SugaredLogger
}

// New creates an empty Bus. A nil logger disables logging.
func New(log *zap.SugaredLogger) *Bus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bus{
		subscribers: make(map[EventType]map[uint64]handler),
		log:         log,
	}
}

// Subscribe registers h for eventType and returns a function removing it.
func (b *Bus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[uint64]handler)
	}
	b.subscribers[eventType][id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers := b.subscribers[eventType]; handlers != nil {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subscribers, eventType)
			}
		}
	}
}

// SubscribeTyped registers a handler that only sees payloads of type T.
// Events carrying another payload type are skipped.
func SubscribeTyped[T any](b *Bus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return b.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			b.log.Debugf("eventbus: skipping %s, payload %T", eventType, e.Data)
			return nil
		}
		return h(EventT[T]{ctx: e.ctx, Type: e.Type, Timestamp: e.Timestamp, Data: payload})
	})
}

// Publish runs every handler for e.Type. Handler errors and panics are
// collected; a cancelled context stops delivery.
func (b *Bus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)
	}

	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subscribers[e.Type]))
	handlers := make(map[uint64]handler, len(b.subscribers[e.Type]))
	for id, h := range b.subscribers[e.Type] {
		ids = append(ids, id)
		handlers[id] = h
	}
	b.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var errs []error
	for _, id := range ids {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during event processing: %w", err))
			break
		}
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic (ID %d) for event %s: %v", id, e.Type, r)
				}
			}()
			return handlers[id](e)
		}()
		if err != nil {
			b.log.Errorw("event handler failed", "event", e.Type, "handler", id, "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %v", e.Type, len(errs), errs)
	}
	return nil
}

// Emit publishes an event and only logs a failure. Stores use it where the
// caller has no use for handler errors.
func (b *Bus) Emit(ctx context.Context, eventType EventType, data any) {
	if b == nil {
		return
	}
	if err := b.Publish(NewEvent(ctx, eventType, data)); err != nil {
		b.log.Warnw("event publish failed", "event", eventType, "error", err)
	}
}
