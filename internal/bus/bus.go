// Package bus is the in-process pub/sub layer between the connection manager
// and whatever consumes its events. Delivery is synchronous and ordered by
// subscription; a panicking handler is logged and skipped, never fatal.
package bus

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

type Handler func(payload any)

// Subscription identifies one registration. Holding it is the only way to
// unsubscribe — handlers themselves are not comparable, so subscribing the
// same func twice really does register it twice.
type Subscription struct {
	event string
	id    uint64
}

type entry struct {
	id uint64
	h  Handler
}

type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]entry
	log    *zap.Logger
}

func New(log *zap.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]entry),
		log:  log,
	}
}

func (b *Bus) Subscribe(event string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[event] = append(b.subs[event], entry{id: b.nextID, h: h})
	return Subscription{event: event, id: b.nextID}
}

// Unsubscribe removes exactly the registration s refers to. Unknown or
// already-removed subscriptions are a no-op.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.event]
	for i, e := range list {
		if e.id == s.id {
			b.subs[s.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish invokes every subscriber for event in registration order. A failure
// in one subscriber must not block the next, so each call is fenced with a
// recover.
func (b *Bus) Publish(event string, payload any) {
	b.mu.RLock()
	list := b.subs[event]
	snapshot := make([]entry, len(list))
	copy(snapshot, list)
	b.mu.RUnlock()

	for _, e := range snapshot {
		b.safeCall(event, e.h, payload)
	}
}

func (b *Bus) safeCall(event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber panic",
				zap.String("event", event),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	h(payload)
}
