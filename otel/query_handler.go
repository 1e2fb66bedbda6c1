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

type telemetryQueryHandler[T ordercore.Query, R any] struct {
	next      ordercore.QueryHandler[T, R]
	queryType string
}

// WithQueryTelemetry wraps a QueryHandler with a span and the
// ordercore.queries.* metrics.
func WithQueryTelemetry[T ordercore.Query, R any](next ordercore.QueryHandler[T, R]) ordercore.QueryHandler[T, R] {
	var zero T
	return &telemetryQueryHandler[T, R]{next: next, queryType: zero.QueryType()}
}

func (h *telemetryQueryHandler[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	ctx, span := Tracer().Start(ctx, fmt.Sprintf("query.handle %s", h.queryType),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrQueryType.String(h.queryType)),
	)
	defer span.End()

	start := time.Now()
	result, err := h.next.HandleQuery(ctx, qry)
	QueriesDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrQueryType.String(h.queryType)))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		QueriesFailed.Add(ctx, 1, metric.WithAttributes(AttrQueryType.String(h.queryType)))
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	QueriesHandled.Add(ctx, 1, metric.WithAttributes(AttrQueryType.String(h.queryType)))
	return result, nil
}
