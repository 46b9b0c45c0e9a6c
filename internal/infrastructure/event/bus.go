package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/logger"
	"github.com/erp/soreconcile/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Dispatch is synchronous: Publish returns after every handler ran.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish dispatches events to all registered handlers. Handler errors and
// panics are logged and do not reach the publisher. Publishing on a stopped
// bus returns ErrBusStopped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		return ErrBusStopped
	}
	b.wg.Add(1)
	defer b.wg.Done()

	for _, event := range events {
		b.dispatch(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	eventID := event.EventID().String()
	ctx = logger.WithEventID(ctx, eventID)
	ctx, span := telemetry.StartSpan(ctx, "event_bus.dispatch",
		telemetry.WithSpanKind(trace.SpanKindConsumer),
		telemetry.WithAttribute("event.type", event.EventType()),
		telemetry.WithAttribute("event.id", eventID),
	)
	defer span.End()

	handlers := b.registry.GetHandlers(event.EventType())
	if len(handlers) == 0 {
		logger.WithLogger(ctx, b.logger).Debug("no handler for event", zap.String("event_type", event.EventType()))
		return
	}

	for _, handler := range handlers {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			telemetry.RecordError(span, err)
			logger.WithLogger(ctx, b.logger).Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Strings("event_types", b.registry.EventTypes()))
	return nil
}

// Stop refuses new events and waits for in-flight dispatches, or for ctx
// to be done, whichever comes first.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with events in flight")
		return ctx.Err()
	}
}

// IsRunning reports whether the bus accepts events
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithLogger(ctx, b.logger).Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

// ErrBusStopped is returned when publishing on a bus that is not running
var ErrBusStopped = shared.NewDomainError("EVENT_BUS_STOPPED", "event bus is not running")

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
