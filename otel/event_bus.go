package otel

import (
	"context"
	"fmt"
	"time"

	ordercore "github.com/terraskye/ordercore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var _ ordercore.EventBus = (*telemetryEventBus)(nil)

type telemetryEventBus struct {
	next ordercore.EventBus
}

// WithEventBusTelemetry wraps an EventBus so every subscriber handler runs
// inside a span and reports ordercore.eventbus.* metrics, regardless of
// which projection or saga trigger registered it.
func WithEventBusTelemetry(next ordercore.EventBus) ordercore.EventBus {
	return &telemetryEventBus{next: next}
}

func (b *telemetryEventBus) Subscribe(ctx context.Context, name string, filter func(ordercore.Envelope) bool, handler ordercore.EventHandler, opts ...ordercore.SubscriberOption) error {
	wrapped := ordercore.NewEventHandlerFunc(func(ctx context.Context, event ordercore.Event) error {
		env, _ := ordercore.EnvelopeFromContext(ctx)

		ctx, span := Tracer().Start(ctx, fmt.Sprintf("eventbus.handle %s", name),
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				AttrEventType.String(event.EventType()),
				AttrAggregateID.String(env.AggregateID.String()),
				AttrSubscriberName.String(name),
			),
		)
		defer span.End()

		start := time.Now()
		err := handler.Handle(ctx, event)
		EventBusDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrSubscriberName.String(name)))
		EventBusHandled.Add(ctx, 1, metric.WithAttributes(AttrSubscriberName.String(name)))

		if err != nil {
			if _, skipped := err.(ordercore.ErrSkippedEvent); skipped {
				span.SetStatus(codes.Ok, "skipped")
				return err
			}
			EventBusErrors.Add(ctx, 1, metric.WithAttributes(AttrSubscriberName.String(name)))
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})

	return b.next.Subscribe(ctx, name, filter, wrapped, opts...)
}

func (b *telemetryEventBus) Dispatch(env ordercore.Envelope) {
	EventBusPublished.Add(context.Background(), 1, metric.WithAttributes(AttrEventType.String(env.EventType)))
	b.next.Dispatch(env)
}

func (b *telemetryEventBus) Errors() <-chan error { return b.next.Errors() }
func (b *telemetryEventBus) Close() error         { return b.next.Close() }
