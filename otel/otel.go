package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/terraskye/ordercore"

// Semantic attribute keys, namespaced under ordercore.* following
// OpenTelemetry semantic-convention style.
const (
	AttrCommandType = attribute.Key("ordercore.command.type")
	AttrAggregateID = attribute.Key("ordercore.aggregate.id")
	AttrAggregateType = attribute.Key("ordercore.aggregate.type")

	AttrEventType  = attribute.Key("ordercore.event.type")
	AttrEventID    = attribute.Key("ordercore.event.id")
	AttrEventCount = attribute.Key("ordercore.events.count")

	AttrQueryType  = attribute.Key("ordercore.query.type")
	AttrResultType = attribute.Key("ordercore.query.result_type")

	AttrSubscriberName = attribute.Key("ordercore.subscriber.name")
	AttrHandlerName    = attribute.Key("ordercore.handler.name")

	AttrSagaID   = attribute.Key("ordercore.saga.id")
	AttrStepName = attribute.Key("ordercore.saga.step")

	AttrProjectionName = attribute.Key("ordercore.projection.name")

	AttrErrorType = attribute.Key("ordercore.error.type")
	AttrOperation = attribute.Key("ordercore.operation")
)

// AttrOperationAttr is a small convenience wrapper so call sites can write
// AttrOperationAttr("append") instead of AttrOperation.String("append").
func AttrOperationAttr(op string) attribute.KeyValue { return AttrOperation.String(op) }

var (
	meter  = otel.Meter(instrumentationName)
	tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion("0.1.0"))

	CommandsHandled, _ = meter.Int64Counter(
		"ordercore.commands.handled",
		metric.WithDescription("Total number of commands handled"),
		metric.WithUnit("{command}"),
	)
	CommandsFailed, _ = meter.Int64Counter(
		"ordercore.commands.failed",
		metric.WithDescription("Number of failed commands"),
		metric.WithUnit("{command}"),
	)
	commandsInFlight, _ = meter.Int64UpDownCounter(
		"ordercore.commands.in_flight",
		metric.WithDescription("Number of commands currently executing"),
		metric.WithUnit("{command}"),
	)

	CommandsDuration, _ = meter.Float64Histogram(
		"ordercore.commands.duration",
		metric.WithDescription("Command handling duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	EventStoreAppends, _ = meter.Int64Counter(
		"ordercore.eventstore.appends",
		metric.WithDescription("Number of append operations"),
		metric.WithUnit("{operation}"),
	)
	EventStoreLoads, _ = meter.Int64Counter(
		"ordercore.eventstore.loads",
		metric.WithDescription("Number of load operations"),
		metric.WithUnit("{operation}"),
	)
	EventStoreDuration, _ = meter.Float64Histogram(
		"ordercore.eventstore.duration",
		metric.WithDescription("Event store operation duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	EventStoreErrors, _ = meter.Int64Counter(
		"ordercore.eventstore.errors",
		metric.WithDescription("Number of event store errors"),
		metric.WithUnit("{error}"),
	)
	ConcurrencyConflicts, _ = meter.Int64Counter(
		"ordercore.concurrency.conflicts",
		metric.WithDescription("Number of optimistic concurrency conflicts"),
		metric.WithUnit("{conflict}"),
	)

	EventBusPublished, _ = meter.Int64Counter(
		"ordercore.eventbus.published",
		metric.WithDescription("Number of envelopes dispatched to the event bus"),
		metric.WithUnit("{event}"),
	)
	EventBusHandled, _ = meter.Int64Counter(
		"ordercore.eventbus.handled",
		metric.WithDescription("Number of envelopes handled by subscribers"),
		metric.WithUnit("{event}"),
	)
	EventBusErrors, _ = meter.Int64Counter(
		"ordercore.eventbus.errors",
		metric.WithDescription("Number of subscriber handler errors"),
		metric.WithUnit("{error}"),
	)
	EventBusDuration, _ = meter.Float64Histogram(
		"ordercore.eventbus.duration",
		metric.WithDescription("Subscriber handler duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	QueriesHandled, _ = meter.Int64Counter(
		"ordercore.queries.handled",
		metric.WithDescription("Total number of queries handled"),
		metric.WithUnit("{query}"),
	)
	QueriesFailed, _ = meter.Int64Counter(
		"ordercore.queries.failed",
		metric.WithDescription("Number of failed queries"),
		metric.WithUnit("{query}"),
	)
	QueriesDuration, _ = meter.Float64Histogram(
		"ordercore.queries.duration",
		metric.WithDescription("Query handling duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	SagaStepsExecuted, _ = meter.Int64Counter(
		"ordercore.saga.steps_executed",
		metric.WithDescription("Number of saga steps executed"),
		metric.WithUnit("{step}"),
	)
	SagaCompensations, _ = meter.Int64Counter(
		"ordercore.saga.compensations",
		metric.WithDescription("Number of saga compensating actions executed"),
		metric.WithUnit("{step}"),
	)
	SagaOutcomes, _ = meter.Int64Counter(
		"ordercore.saga.outcomes",
		metric.WithDescription("Number of sagas that reached a terminal state"),
		metric.WithUnit("{saga}"),
	)

	ProjectionEventsApplied, _ = meter.Int64Counter(
		"ordercore.projection.events_applied",
		metric.WithDescription("Number of events applied by a projection"),
		metric.WithUnit("{event}"),
	)
	ProjectionLag, _ = meter.Int64Gauge(
		"ordercore.projection.lag",
		metric.WithDescription("Difference between the store's global sequence and the projection's applied sequence"),
		metric.WithUnit("{event}"),
	)
)

// Tracer returns the package-wide tracer used by every decorator in this
// package.
func Tracer() trace.Tracer { return tracer }
