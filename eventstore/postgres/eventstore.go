// Package postgres implements ordercore.EventStore on top of GORM and a
// single Postgres database: one table for the append-only log, keyed by
// (aggregate_id, version) with a unique index enforcing optimistic
// concurrency at the database level, and one table for snapshots.
// Event payloads are stored as jsonb through the ordercore event registry
// so the schema doesn't need a column per event type.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"time"

	ordercore "github.com/terraskye/ordercore"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// eventRow is the durable representation of one ordercore.Envelope.
type eventRow struct {
	SequenceNumber uint64 `gorm:"column:sequence_number;primaryKey;autoIncrement"`
	EventID        string `gorm:"column:event_id;uniqueIndex;size:36"`
	AggregateID    string `gorm:"column:aggregate_id;size:36;uniqueIndex:idx_aggregate_version,priority:1"`
	AggregateType  string `gorm:"column:aggregate_type;size:128;index"`
	EventType      string `gorm:"column:event_type;size:128;index"`
	Version        uint64 `gorm:"column:version;uniqueIndex:idx_aggregate_version,priority:2"`
	OccurredAt     time.Time `gorm:"column:occurred_at;index"`
	Payload        []byte `gorm:"column:payload;type:jsonb"`
	Metadata       []byte `gorm:"column:metadata;type:jsonb"`
}

func (eventRow) TableName() string { return "events" }

type snapshotRow struct {
	AggregateID   string `gorm:"column:aggregate_id;primaryKey;size:36"`
	AggregateType string `gorm:"column:aggregate_type;size:128"`
	Version       uint64 `gorm:"column:version"`
	TakenAt       time.Time `gorm:"column:taken_at"`
	State         []byte `gorm:"column:state;type:jsonb"`
}

func (snapshotRow) TableName() string { return "snapshots" }

type Store struct {
	db *gorm.DB
}

// New wraps an already-connected *gorm.DB and runs AutoMigrate for the
// event log and snapshot tables. Connecting to Postgres and choosing this
// backend over the in-memory one is the caller's responsibility; this
// package only knows how to talk to a database it's handed.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&eventRow{}, &snapshotRow{}); err != nil {
		return nil, ordercore.WrapBackendError(err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, events []ordercore.Envelope, opts ordercore.AppendOptions) (ordercore.AppendResult, error) {
	if len(events) == 0 {
		return ordercore.AppendResult{}, &ordercore.InvalidBatchError{Reason: "empty batch"}
	}

	aggregateID := events[0].AggregateID
	aggregateType := events[0].AggregateType

	var result ordercore.AppendResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion uint64
		if err := tx.Model(&eventRow{}).
			Where("aggregate_id = ?", aggregateID.String()).
			Select("COALESCE(MAX(version), 0)").
			Scan(&currentVersion).Error; err != nil {
			return err
		}

		switch ev := opts.ExpectedVersion.(type) {
		case ordercore.Any:
		case ordercore.New:
			if currentVersion != 0 {
				return &ordercore.ConcurrencyConflictError{AggregateID: aggregateID, Expected: ordercore.VersionZero, Actual: ordercore.Version(currentVersion)}
			}
		case ordercore.Exact:
			if currentVersion != uint64(ev) {
				return &ordercore.ConcurrencyConflictError{AggregateID: aggregateID, Expected: ordercore.Version(ev), Actual: ordercore.Version(currentVersion)}
			}
		default:
			return &ordercore.InvalidBatchError{Reason: "unsupported ExpectedVersion"}
		}

		rows := make([]eventRow, len(events))
		for i, env := range events {
			if env.AggregateID != aggregateID || env.AggregateType != aggregateType {
				return &ordercore.InvalidBatchError{Reason: "batch spans more than one aggregate"}
			}
			if env.Version != ordercore.Version(currentVersion)+ordercore.Version(i)+1 {
				return &ordercore.InvalidBatchError{Reason: "batch does not continue from the stream's current version"}
			}
			payload, err := json.Marshal(env.Event)
			if err != nil {
				return err
			}
			metadata, err := json.Marshal(env.Metadata)
			if err != nil {
				return err
			}
			rows[i] = eventRow{
				EventID:       env.EventID.String(),
				AggregateID:   env.AggregateID.String(),
				AggregateType: env.AggregateType,
				EventType:     env.EventType,
				Version:       uint64(env.Version),
				OccurredAt:    env.OccurredAt,
				Payload:       payload,
				Metadata:      metadata,
			}
		}

		if err := tx.Create(&rows).Error; err != nil {
			// 23505 is Postgres's unique_violation: a concurrent append took
			// one of these versions after currentVersion was read above.
			// Actual is the lowest version that competing append reached.
			var sqlErr interface{ SQLState() string }
			if errors.As(err, &sqlErr) && sqlErr.SQLState() == "23505" {
				return &ordercore.ConcurrencyConflictError{AggregateID: aggregateID, Expected: ordercore.Version(currentVersion), Actual: ordercore.Version(currentVersion) + 1}
			}
			return err
		}

		result = ordercore.AppendResult{AggregateID: aggregateID, NextVersion: ordercore.Version(currentVersion) + ordercore.Version(len(events))}
		return nil
	})

	if err != nil {
		var conflict *ordercore.ConcurrencyConflictError
		var invalid *ordercore.InvalidBatchError
		if errors.As(err, &conflict) || errors.As(err, &invalid) {
			return ordercore.AppendResult{}, err
		}
		return ordercore.AppendResult{}, ordercore.WrapBackendError(err)
	}
	_ = aggregateType
	return result, nil
}

func (s *Store) GetEventsForAggregate(ctx context.Context, id ordercore.AggregateId) ([]ordercore.Envelope, error) {
	var rows []eventRow
	if err := s.db.WithContext(ctx).
		Where("aggregate_id = ?", id.String()).
		Order("version asc").
		Find(&rows).Error; err != nil {
		return nil, ordercore.WrapBackendError(err)
	}
	return decodeRows(rows)
}

func (s *Store) GetEventsInRange(ctx context.Context, id ordercore.AggregateId, from, to ordercore.Version) ([]ordercore.Envelope, error) {
	var rows []eventRow
	if err := s.db.WithContext(ctx).
		Where("aggregate_id = ? AND version BETWEEN ? AND ?", id.String(), uint64(from), uint64(to)).
		Order("version asc").
		Find(&rows).Error; err != nil {
		return nil, ordercore.WrapBackendError(err)
	}
	return decodeRows(rows)
}

func (s *Store) GetEventsByType(ctx context.Context, eventType string) ([]ordercore.Envelope, error) {
	var rows []eventRow
	if err := s.db.WithContext(ctx).
		Where("event_type = ?", eventType).
		Order("sequence_number asc").
		Find(&rows).Error; err != nil {
		return nil, ordercore.WrapBackendError(err)
	}
	return decodeRows(rows)
}

func (s *Store) StreamAll(ctx context.Context, fromSequence uint64) (*ordercore.Iterator[ordercore.Envelope], error) {
	const batchSize = 500
	var (
		rows    []ordercore.Envelope
		index   int
		cursor  = fromSequence
		drained bool
	)

	return ordercore.NewIteratorFunc(func(ctx context.Context) (ordercore.Envelope, error) {
		for {
			if index < len(rows) {
				env := rows[index]
				index++
				return env, nil
			}
			if drained {
				return ordercore.Envelope{}, io.EOF
			}

			var batch []eventRow
			if err := s.db.WithContext(ctx).
				Where("sequence_number > ?", cursor).
				Order("sequence_number asc").
				Limit(batchSize).
				Find(&batch).Error; err != nil {
				return ordercore.Envelope{}, ordercore.WrapBackendError(err)
			}

			if len(batch) == 0 {
				drained = true
				continue
			}

			decoded, err := decodeRows(batch)
			if err != nil {
				return ordercore.Envelope{}, err
			}
			rows = decoded
			index = 0
			cursor = batch[len(batch)-1].SequenceNumber
			if len(batch) < batchSize {
				drained = true
			}
		}
	}), nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot ordercore.Snapshot) error {
	row := snapshotRow{
		AggregateID:   snapshot.AggregateID.String(),
		AggregateType: snapshot.AggregateType,
		Version:       uint64(snapshot.Version),
		TakenAt:       snapshot.TakenAt,
		State:         snapshot.State,
	}
	err := s.db.WithContext(ctx).Save(&row).Error
	return ordercore.WrapBackendError(err)
}

func (s *Store) GetSnapshot(ctx context.Context, id ordercore.AggregateId) (*ordercore.Snapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).First(&row, "aggregate_id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ordercore.WrapBackendError(err)
	}
	return &ordercore.Snapshot{
		AggregateID:   id,
		AggregateType: row.AggregateType,
		Version:       ordercore.Version(row.Version),
		TakenAt:       row.TakenAt,
		State:         row.State,
	}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ordercore.WrapBackendError(err)
	}
	return sqlDB.Close()
}

func decodeRows(rows []eventRow) ([]ordercore.Envelope, error) {
	out := make([]ordercore.Envelope, len(rows))
	for i, row := range rows {
		event, err := ordercore.NewEventByName(row.EventType)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			return nil, err
		}
		// The registry's factories return pointers (the conventional shape
		// for a json.Unmarshal target), but every Apply/projection type
		// switch matches on the value type. Dereference back to the value
		// the aggregates and projections actually expect.
		if v := reflect.ValueOf(event); v.Kind() == reflect.Ptr {
			event = v.Elem().Interface().(ordercore.Event)
		}

		var metadata map[string]any
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
				return nil, err
			}
		}

		aggregateID, err := parseUUID(row.AggregateID)
		if err != nil {
			return nil, err
		}
		eventID, err := parseUUID(row.EventID)
		if err != nil {
			return nil, err
		}

		out[i] = ordercore.Envelope{
			EventID:       eventID,
			AggregateID:   aggregateID,
			AggregateType: row.AggregateType,
			EventType:     row.EventType,
			Version:       ordercore.Version(row.Version),
			OccurredAt:    row.OccurredAt,
			Event:         event,
			Metadata:      metadata,
		}
	}
	return out, nil
}
