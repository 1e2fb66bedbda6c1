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

// Executor is the narrow surface of ordercore.CommandHandler[A] that
// WithCommandTelemetry decorates. ordercore.CommandHandler[A] satisfies it
// directly.
type Executor[A ordercore.Aggregate] interface {
	Execute(ctx context.Context, id ordercore.AggregateId, commandFn func(agg A) ([]ordercore.Event, error)) (A, error)
}

type telemetryCommandHandler[A ordercore.Aggregate] struct {
	next          Executor[A]
	aggregateType string
}

// WithCommandTelemetry wraps a command handler with a span and the
// ordercore.commands.* metrics, naming spans and attributes after
// aggregateType (e.g. "order", "saga").
func WithCommandTelemetry[A ordercore.Aggregate](next Executor[A], aggregateType string) Executor[A] {
	return &telemetryCommandHandler[A]{next: next, aggregateType: aggregateType}
}

func (h *telemetryCommandHandler[A]) Execute(ctx context.Context, id ordercore.AggregateId, commandFn func(agg A) ([]ordercore.Event, error)) (A, error) {
	ctx, span := Tracer().Start(ctx, fmt.Sprintf("command.execute %s", h.aggregateType),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrAggregateType.String(h.aggregateType),
			AttrAggregateID.String(id.String()),
		),
	)
	defer span.End()

	CommandsInFlight(ctx, h.aggregateType, 1)
	defer CommandsInFlight(ctx, h.aggregateType, -1)

	start := time.Now()
	result, err := h.next.Execute(ctx, id, commandFn)
	CommandsDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrAggregateType.String(h.aggregateType)))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		CommandsFailed.Add(ctx, 1, metric.WithAttributes(AttrAggregateType.String(h.aggregateType)))
		if _, ok := err.(*ordercore.ConcurrencyConflictError); ok {
			ConcurrencyConflicts.Add(ctx, 1, metric.WithAttributes(AttrAggregateType.String(h.aggregateType)))
		}
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	CommandsHandled.Add(ctx, 1, metric.WithAttributes(AttrAggregateType.String(h.aggregateType)))
	return result, nil
}

// CommandsInFlight adjusts the in-flight command gauge by delta for the
// given aggregate type.
func CommandsInFlight(ctx context.Context, aggregateType string, delta int64) {
	commandsInFlight.Add(ctx, delta, metric.WithAttributes(AttrAggregateType.String(aggregateType)))
}
