package ordercore

import (
	"context"
	"time"
)

// EventStore defines the contract for an append-only event store
// used in event-sourced systems. An EventStore persists events
// associated with a given aggregate ID in sequential order, allowing
// for full reconstruction of aggregate state at any point in time.
//
// Implementations must guarantee:
//   - Events for a given aggregate are stored in order.
//   - Concurrency control based on the aggregate's expected version.
//   - Iteration order from all Get* methods and StreamAll is deterministic
//     (oldest → newest).
//
// The *Iterator returned by StreamAll is a lazy, single-pass iterator over
// the stored events. It should be consumed immediately; no assumptions
// should be made about reusability or thread-safety after iteration
// completes.
type EventStore interface {
	// Append writes all events in the batch to the aggregate's stream as a
	// single atomic operation. Every envelope must share the same
	// AggregateID and AggregateType, and Version must be strictly
	// sequential starting right after opts.ExpectedVersion.
	//
	// Errors:
	//   - *ConcurrencyConflictError if opts.ExpectedVersion does not match
	//     the stream's actual current version.
	//   - *InvalidBatchError if the batch violates the same-aggregate or
	//     sequential-version invariant.
	//   - *BackendError for any underlying persistence failure.
	Append(ctx context.Context, events []Envelope, opts AppendOptions) (AppendResult, error)

	// GetEventsForAggregate returns every event recorded for id, in
	// ascending version order.
	GetEventsForAggregate(ctx context.Context, id AggregateId) ([]Envelope, error)

	// GetEventsInRange returns the events for id with Version in
	// [fromVersion, toVersion], inclusive, in ascending order. Used by
	// snapshot-assisted replay to fetch only the tail of a stream.
	GetEventsInRange(ctx context.Context, id AggregateId, fromVersion, toVersion Version) ([]Envelope, error)

	// GetEventsByType returns every stored event whose EventType matches,
	// across all aggregates, in the order the backend recorded them. Used
	// by projections that key off a single event type rather than a
	// stream.
	GetEventsByType(ctx context.Context, eventType string) ([]Envelope, error)

	// StreamAll returns a lazy iterator over every event in the store in
	// the order the backend appended them (global, monotonic). Projection
	// catch-up uses this to replay history from the beginning.
	StreamAll(ctx context.Context, fromSequence uint64) (*Iterator[Envelope], error)

	// SaveSnapshot stores a point-in-time materialization of an
	// aggregate's state. Snapshots are an optimization only: deleting all
	// snapshots must never change what Load/LoadWithSnapshot return.
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error

	// GetSnapshot returns the most recent snapshot for id, or nil if none
	// exists.
	GetSnapshot(ctx context.Context, id AggregateId) (*Snapshot, error)

	// Close releases any resources held by the EventStore. Implementations
	// must make Close idempotent.
	Close() error
}

// AppendResult describes the outcome of a successful append.
type AppendResult struct {
	AggregateID AggregateId
	NextVersion Version
}

// Snapshot is a point-in-time materialization of an aggregate used to
// bound replay cost. State is an opaque, aggregate-defined encoding
// (typically JSON) produced by SnapshotAggregate.SnapshotState.
type Snapshot struct {
	AggregateID   AggregateId
	AggregateType string
	Version       Version
	TakenAt       time.Time
	State         []byte
}
