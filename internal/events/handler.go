// internal/events/handler.go
package events

import (
	"context"
)

// Handler processes events of a specific type. Handle must not block for long:
// the bus delivers events one by one.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow the use of ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// OnToast adapts a typed toast callback. Other event payloads are ignored.
func OnToast(fn func(ToastEvent)) Handler {
	return HandlerFunc(func(_ context.Context, e Event) error {
		if toast, ok := e.(ToastEvent); ok {
			fn(toast)
		}
		return nil
	})
}

// OnTxStatus adapts a typed transaction status callback.
func OnTxStatus(fn func(TxStatusEvent)) Handler {
	return HandlerFunc(func(_ context.Context, e Event) error {
		if status, ok := e.(TxStatusEvent); ok {
			fn(status)
		}
		return nil
	})
}

// Subscription represents a subscription to events.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	typ      EventType
}

func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.typ)
}
