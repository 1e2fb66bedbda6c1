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

// WithEventTelemetry wraps a bare EventHandler (no subscriber name) with a
// span and the ordercore.eventbus.duration metric, for one-off handlers
// that aren't registered through an EventBus.
func WithEventTelemetry(next ordercore.EventHandler) ordercore.EventHandler {
	return ordercore.NewEventHandlerFunc(func(ctx context.Context, event ordercore.Event) error {
		ctx, span := Tracer().Start(ctx, fmt.Sprintf("events.handle %s", event.EventType()),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(AttrEventType.String(event.EventType())),
		)
		defer span.End()

		start := time.Now()
		err := next.Handle(ctx, event)
		EventBusDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrEventType.String(event.EventType())))

		if err != nil {
			if _, skipped := err.(ordercore.ErrSkippedEvent); skipped {
				span.SetStatus(codes.Ok, "skipped")
				return err
			}
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})
}
