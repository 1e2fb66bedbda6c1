package otel

import (
	"context"
	"time"

	ordercore "github.com/terraskye/ordercore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ ordercore.EventStore = (*telemetryStore)(nil)

type telemetryStore struct {
	next ordercore.EventStore
}

// WithEventStoreTelemetry wraps an EventStore with tracing spans and the
// ordercore.eventstore.* metrics. The correlation id from ctx, if any,
// and the trace context are injected into each envelope's metadata
// before the call reaches next, so they survive into storage.
func WithEventStoreTelemetry(next ordercore.EventStore) ordercore.EventStore {
	return &telemetryStore{next: next}
}

func (t *telemetryStore) Append(ctx context.Context, events []ordercore.Envelope, opts ordercore.AppendOptions) (ordercore.AppendResult, error) {
	var aggregateID ordercore.AggregateId
	if len(events) > 0 {
		aggregateID = events[0].AggregateID
	}

	ctx, span := Tracer().Start(ctx, "EventStore.Append",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrAggregateID.String(aggregateID.String()),
			AttrEventCount.Int(len(events)),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	correlationID := ordercore.CorrelationIDFromContext(ctx)
	for i := range events {
		if correlationID != "" {
			events[i].Metadata["correlationId"] = correlationID
		}
		for key, value := range carrier {
			events[i].Metadata[key] = value
		}
	}

	start := time.Now()
	result, err := t.next.Append(ctx, events, opts)
	EventStoreDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrOperationAttr("append")))
	EventStoreAppends.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("append")))

	if err != nil {
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("append")))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if _, ok := err.(*ordercore.ConcurrencyConflictError); ok {
			ConcurrencyConflicts.Add(ctx, 1, metric.WithAttributes(AttrAggregateID.String(aggregateID.String())))
		}
	}

	return result, err
}

func (t *telemetryStore) GetEventsForAggregate(ctx context.Context, id ordercore.AggregateId) ([]ordercore.Envelope, error) {
	ctx, span := Tracer().Start(ctx, "EventStore.GetEventsForAggregate", trace.WithAttributes(AttrAggregateID.String(id.String())))
	defer span.End()

	start := time.Now()
	events, err := t.next.GetEventsForAggregate(ctx, id)
	t.recordLoad(ctx, span, start, len(events), err)
	return events, err
}

func (t *telemetryStore) GetEventsInRange(ctx context.Context, id ordercore.AggregateId, from, to ordercore.Version) ([]ordercore.Envelope, error) {
	ctx, span := Tracer().Start(ctx, "EventStore.GetEventsInRange", trace.WithAttributes(AttrAggregateID.String(id.String())))
	defer span.End()

	start := time.Now()
	events, err := t.next.GetEventsInRange(ctx, id, from, to)
	t.recordLoad(ctx, span, start, len(events), err)
	return events, err
}

func (t *telemetryStore) GetEventsByType(ctx context.Context, eventType string) ([]ordercore.Envelope, error) {
	ctx, span := Tracer().Start(ctx, "EventStore.GetEventsByType", trace.WithAttributes(AttrEventType.String(eventType)))
	defer span.End()

	start := time.Now()
	events, err := t.next.GetEventsByType(ctx, eventType)
	t.recordLoad(ctx, span, start, len(events), err)
	return events, err
}

func (t *telemetryStore) StreamAll(ctx context.Context, fromSequence uint64) (*ordercore.Iterator[ordercore.Envelope], error) {
	ctx, span := Tracer().Start(ctx, "EventStore.StreamAll", trace.WithSpanKind(trace.SpanKindClient))
	iter, err := t.next.StreamAll(ctx, fromSequence)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("stream_all")))
		return iter, err
	}
	span.End()
	return iter, nil
}

func (t *telemetryStore) SaveSnapshot(ctx context.Context, snapshot ordercore.Snapshot) error {
	ctx, span := Tracer().Start(ctx, "EventStore.SaveSnapshot", trace.WithAttributes(AttrAggregateID.String(snapshot.AggregateID.String())))
	defer span.End()

	err := t.next.SaveSnapshot(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("save_snapshot")))
	}
	return err
}

func (t *telemetryStore) GetSnapshot(ctx context.Context, id ordercore.AggregateId) (*ordercore.Snapshot, error) {
	ctx, span := Tracer().Start(ctx, "EventStore.GetSnapshot", trace.WithAttributes(AttrAggregateID.String(id.String())))
	defer span.End()

	snap, err := t.next.GetSnapshot(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("get_snapshot")))
	}
	return snap, err
}

func (t *telemetryStore) Close() error { return t.next.Close() }

func (t *telemetryStore) recordLoad(ctx context.Context, span trace.Span, start time.Time, count int, err error) {
	EventStoreDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrOperationAttr("load")))
	EventStoreLoads.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("load")))
	span.SetAttributes(AttrEventCount.Int(count))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperationAttr("load")))
	}
	span.End()
}
