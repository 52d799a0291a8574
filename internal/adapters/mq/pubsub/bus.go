// Package pubsub delivers engine events to in-process subscribers.
package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/biosense/pkg/logger"
	"github.com/okian/biosense/pkg/metrics"
)

// Handler receives events of the kind it subscribed to.
type Handler func(Event)

type subscription struct {
	id      string
	kind    Kind
	handler Handler
}

// Bus is a synchronous typed event bus. Publish calls handlers on the
// publishing goroutine in subscription order. A panicking handler is
// recovered and does not affect the others. Handlers may subscribe and
// unsubscribe, but must not call back into code that publishes while
// holding its own locks.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{logger: logger.Default().Named("pubsub")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for events of kind k and returns the subscription id.
func (b *Bus) Subscribe(k Kind, h Handler) string {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{id: id, kind: k, handler: h})
	return id
}

// Unsubscribe removes a subscription. It reports whether id was found.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of subscriptions for kind k.
func (b *Bus) Len(k Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.kind == k {
			n++
		}
	}
	return n
}

// Publish delivers e to every subscriber of its kind.
func (b *Bus) Publish(e Event) {
	k := e.Kind()
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == k {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	metrics.RecordEventPublished(string(k))
	for _, h := range handlers {
		b.deliver(k, h, e)
	}
}

func (b *Bus) deliver(k Kind, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSubscriberPanic(string(k))
			b.logger.Error(context.Background(), "subscriber panicked",
				logger.String("event", string(k)),
				logger.Error(fmt.Errorf("panic: %v", r)),
			)
		}
	}()
	h(e)
}

// Subscribe registers a handler for the event type E.
func Subscribe[E Event](b *Bus, h func(E)) string {
	var zero E
	return b.Subscribe(zero.Kind(), func(e Event) {
		if v, ok := e.(E); ok {
			h(v)
		}
	})
}
