// Package events is the in-process publish/subscribe bus that decouples booking state
// changes from their side effects. Delivery is at-most-once: nothing is persisted.
package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler reacts to one published payload. A returned error is logged and dropped.
type Handler func(ctx context.Context, payload any) error

type subscription struct {
	name    string
	handler Handler
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	timeout  time.Duration
	logger   *zap.Logger

	inflight sync.WaitGroup
	closed   bool
}

// NewBus returns a bus whose handlers each get handlerTimeout to finish (0 means no limit).
func NewBus(handlerTimeout time.Duration, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]subscription),
		timeout:  handlerTimeout,
		logger:   logger.With(zap.String("component", "events")),
	}
}

// Subscribe registers handler for every future publish of eventType. name only labels
// log lines.
func (b *Bus) Subscribe(eventType, name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], subscription{name: name, handler: handler})
}

// Publish schedules the handlers registered for eventType and returns immediately. The
// handlers run one after another in registration order on a single goroutine.
func (b *Bus) Publish(eventType string, payload any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		b.logger.Warn("Dropping event published after close", zap.String("event", eventType))
		return
	}
	subs := append([]subscription(nil), b.handlers[eventType]...)
	if len(subs) > 0 {
		b.inflight.Add(1)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	go func() {
		defer b.inflight.Done()
		for _, sub := range subs {
			b.dispatch(eventType, sub, payload)
		}
	}()
}

// Close stops accepting events and waits for in-flight deliveries until ctx is done.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain: %w", ctx.Err())
	}
}

func (b *Bus) dispatch(eventType string, sub subscription, payload any) {
	ctx := context.Background()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event", eventType),
				zap.String("handler", sub.name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	if err := sub.handler(ctx, payload); err != nil {
		b.logger.Error("Event handler failed",
			zap.String("event", eventType),
			zap.String("handler", sub.name),
			zap.Error(err),
		)
	}
}
