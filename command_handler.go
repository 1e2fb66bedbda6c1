package ordercore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// CommandHandler loads, mutates, and persists aggregates of a single
// concrete type A. A is almost always a pointer type (e.g. *order.Order)
// so Apply and the command methods can mutate it in place.
type CommandHandler[A Aggregate] struct {
	store         EventStore
	aggregateType string
	newAggregate  func(id AggregateId) A
	retryStrategy backoff.BackOff
}

// CommandHandlerOption configures a CommandHandler at construction time.
type CommandHandlerOption[A Aggregate] func(*CommandHandler[A])

// WithRetryStrategy overrides the backoff strategy used to retry a command
// on concurrency conflicts. By default a CommandHandler does not retry at
// all: a ConcurrencyConflict is surfaced to the caller, who chooses to
// reload and retry the command from scratch. Passing a strategy here opts
// a specific handler into automatic conflict retries.
func WithRetryStrategy[A Aggregate](strategy backoff.BackOff) CommandHandlerOption[A] {
	return func(h *CommandHandler[A]) { h.retryStrategy = strategy }
}

// NewCommandHandler builds a CommandHandler for aggregate type A.
// newAggregate must return a zero-value aggregate with its id already set,
// ready to have history replayed onto it via Apply.
func NewCommandHandler[A Aggregate](store EventStore, aggregateType string, newAggregate func(id AggregateId) A, opts ...CommandHandlerOption[A]) *CommandHandler[A] {
	h := &CommandHandler[A]{
		store:         store,
		aggregateType: aggregateType,
		newAggregate:  newAggregate,
		retryStrategy: &backoff.StopBackOff{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load rebuilds the aggregate at id by replaying its full event history.
// It returns a *NotFoundError if no events exist for id.
func (h *CommandHandler[A]) Load(ctx context.Context, id AggregateId) (A, error) {
	agg := h.newAggregate(id)

	envelopes, err := h.store.GetEventsForAggregate(ctx, id)
	if err != nil {
		return agg, fmt.Errorf("load %s %s: %w", h.aggregateType, id, err)
	}
	if len(envelopes) == 0 {
		return agg, &NotFoundError{AggregateID: id}
	}
	for _, env := range envelopes {
		agg.Apply(env.Event)
	}
	return agg, nil
}

// LoadWithSnapshot rebuilds the aggregate from its most recent snapshot, if
// any, then replays only the events recorded after it. Aggregates that do
// not implement SnapshotAggregate fall back to a full Load.
func (h *CommandHandler[A]) LoadWithSnapshot(ctx context.Context, id AggregateId) (A, error) {
	agg := h.newAggregate(id)

	snapshotable, ok := Aggregate(agg).(SnapshotAggregate)
	if !ok {
		return h.Load(ctx, id)
	}

	snap, err := h.store.GetSnapshot(ctx, id)
	if err != nil {
		return agg, fmt.Errorf("load %s %s: get snapshot: %w", h.aggregateType, id, err)
	}

	fromVersion := Version(1)
	if snap != nil {
		if err := snapshotable.RestoreSnapshot(snap.Version, snap.State); err != nil {
			return agg, fmt.Errorf("load %s %s: restore snapshot: %w", h.aggregateType, id, err)
		}
		fromVersion = snap.Version.Next()
	}

	envelopes, err := h.store.GetEventsInRange(ctx, id, fromVersion, Version(^uint64(0)))
	if err != nil {
		return agg, fmt.Errorf("load %s %s: %w", h.aggregateType, id, err)
	}
	if snap == nil && len(envelopes) == 0 {
		return agg, &NotFoundError{AggregateID: id}
	}
	for _, env := range envelopes {
		agg.Apply(env.Event)
	}
	return agg, nil
}

// Execute loads the aggregate at id, invokes commandFn to produce the
// events the command wants to happen, appends them to the store with an
// expected version equal to what was just loaded, and then applies them to
// the in-memory aggregate. On a concurrency conflict it reloads and
// retries commandFn according to the handler's retry strategy, which by
// default allows no retry.
//
// commandFn returning (nil, nil) means the command was a no-op: nothing is
// appended and the loaded aggregate is returned unchanged.
func (h *CommandHandler[A]) Execute(ctx context.Context, id AggregateId, commandFn func(agg A) ([]Event, error)) (A, error) {
	var result A

	err := backoff.Retry(func() error {
		agg, err := h.Load(ctx, id)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				agg = h.newAggregate(id)
			} else {
				return backoff.Permanent(err)
			}
		}

		events, err := commandFn(agg)
		if err != nil {
			return backoff.Permanent(err)
		}

		expectedVersion := agg.AggregateVersion()
		if len(events) == 0 {
			result = agg
			return nil
		}

		envelopes := make([]Envelope, len(events))
		version := expectedVersion
		for i, event := range events {
			version = version.Next()
			envelopes[i] = NewEnvelope(event, id, h.aggregateType, version, WithMetadata("correlationId", CorrelationIDFromContext(ctx)))
			if cid, ok := CausationIDFromContext(ctx); ok {
				envelopes[i].Metadata["causationId"] = cid
			}
		}

		appendOpts := AppendOptions{ExpectedVersion: Exact(expectedVersion)}
		if expectedVersion == VersionZero {
			appendOpts.ExpectedVersion = New{}
		}

		if _, err := h.store.Append(ctx, envelopes, appendOpts); err != nil {
			var conflict *ConcurrencyConflictError
			if errors.As(err, &conflict) {
				return conflict // retryable
			}
			return backoff.Permanent(err)
		}

		for _, env := range envelopes {
			agg.Apply(env.Event)
		}
		result = agg
		return nil
	}, h.retryStrategy)

	if err != nil {
		return result, err
	}
	return result, nil
}
