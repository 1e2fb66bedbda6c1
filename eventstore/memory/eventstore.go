// Package memory implements ordercore.EventStore with a single mutex over
// per-aggregate stream, aggregate-type and snapshot maps plus a global
// append-order slice. It
// trades durability for zero setup cost, matching the upstream library's
// MemoryStore grounded on the same append-validate-then-commit shape.
package memory

import (
	"context"
	"io"
	"sync"

	ordercore "github.com/terraskye/ordercore"
)

type Store struct {
	mu        sync.RWMutex
	streams   map[ordercore.AggregateId][]ordercore.Envelope
	types     map[ordercore.AggregateId]string
	global    []ordercore.Envelope
	snapshots map[ordercore.AggregateId]ordercore.Snapshot
	closed    bool
}

// New returns an empty in-memory event store.
func New() *Store {
	return &Store{
		streams:   make(map[ordercore.AggregateId][]ordercore.Envelope),
		types:     make(map[ordercore.AggregateId]string),
		snapshots: make(map[ordercore.AggregateId]ordercore.Snapshot),
	}
}

func (s *Store) Append(ctx context.Context, events []ordercore.Envelope, opts ordercore.AppendOptions) (ordercore.AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(events) == 0 {
		return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "empty batch"}
	}

	aggregateID := events[0].AggregateID
	aggregateType := events[0].AggregateType
	expectedVersion := events[0].Version - 1

	for i, env := range events {
		if env.AggregateID != aggregateID || env.AggregateType != aggregateType {
			return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "batch spans more than one aggregate"}
		}
		if env.Version != expectedVersion+ordercore.Version(i)+1 {
			return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "non-sequential version in batch"}
		}
	}

	currentVersion := ordercore.Version(len(s.streams[aggregateID]))

	switch ev := opts.ExpectedVersion.(type) {
	case ordercore.Any:
		// no check
	case ordercore.New:
		if currentVersion != ordercore.VersionZero {
			return ordercore.AppendResult{}, &ordercore.ConcurrencyConflictError{AggregateID: aggregateID, Expected: ordercore.VersionZero, Actual: currentVersion}
		}
	case ordercore.Exact:
		if currentVersion != ordercore.Version(ev) {
			return ordercore.AppendResult{}, &ordercore.ConcurrencyConflictError{AggregateID: aggregateID, Expected: ordercore.Version(ev), Actual: currentVersion}
		}
	default:
		return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "unsupported ExpectedVersion"}
	}

	if events[0].Version != currentVersion.Next() {
		return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "batch does not continue from the stream's current version"}
	}

	s.streams[aggregateID] = append(s.streams[aggregateID], events...)
	s.types[aggregateID] = aggregateType
	s.global = append(s.global, events...)

	return ordercore.AppendResult{
		AggregateID: aggregateID,
		NextVersion: currentVersion + ordercore.Version(len(events)),
	}, nil
}

func (s *Store) GetEventsForAggregate(ctx context.Context, id ordercore.AggregateId) ([]ordercore.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.streams[id]
	out := make([]ordercore.Envelope, len(events))
	copy(out, events)
	return out, nil
}

func (s *Store) GetEventsInRange(ctx context.Context, id ordercore.AggregateId, from, to ordercore.Version) ([]ordercore.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ordercore.Envelope
	for _, env := range s.streams[id] {
		if env.Version >= from && env.Version <= to {
			out = append(out, env)
		}
	}
	return out, nil
}

func (s *Store) GetEventsByType(ctx context.Context, eventType string) ([]ordercore.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ordercore.Envelope
	for _, env := range s.global {
		if env.EventType == eventType {
			out = append(out, env)
		}
	}
	return out, nil
}

func (s *Store) StreamAll(ctx context.Context, fromSequence uint64) (*ordercore.Iterator[ordercore.Envelope], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromSequence > uint64(len(s.global)) {
		return ordercore.NewSliceIterator[ordercore.Envelope](nil), nil
	}

	snapshot := make([]ordercore.Envelope, len(s.global)-int(fromSequence))
	copy(snapshot, s.global[fromSequence:])

	index := 0
	return ordercore.NewIteratorFunc(func(ctx context.Context) (ordercore.Envelope, error) {
		if ctx.Err() != nil {
			return ordercore.Envelope{}, ctx.Err()
		}
		if index >= len(snapshot) {
			return ordercore.Envelope{}, io.EOF
		}
		env := snapshot[index]
		index++
		return env, nil
	}), nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot ordercore.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.AggregateID] = snapshot
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, id ordercore.AggregateId) (*ordercore.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
