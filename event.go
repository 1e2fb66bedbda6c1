package ordercore

import (
	"time"

	"github.com/google/uuid"
)

// AggregateId identifies a single aggregate instance across its lifetime.
type AggregateId = uuid.UUID

// EventId identifies a single event record. Two envelopes never share one,
// even if they describe the same business fact.
type EventId = uuid.UUID

// NewAggregateId returns a fresh random aggregate identifier.
func NewAggregateId() AggregateId { return uuid.New() }

// NewEventId returns a fresh random event identifier.
func NewEventId() EventId { return uuid.New() }

// Version is a 1-based, strictly sequential position of an event within its
// aggregate's stream. Version 0 is reserved for "no events yet".
type Version uint64

// VersionZero is the version of an aggregate that has never had an event
// appended to it.
const VersionZero Version = 0

// Next returns the version immediately following v.
func (v Version) Next() Version { return v + 1 }

// Event is a domain fact describing something that happened to an
// aggregate. Concrete event types are plain structs defined by each
// aggregate package (order.ItemAdded, saga.StepCompleted, ...).
type Event interface {
	// EventType returns the stable wire name used to persist and to look
	// the type back up through the event registry (see RegisterEvent).
	EventType() string
}

// Envelope wraps a domain Event with the store metadata every backend needs
// regardless of payload shape: identity, position, origin, and tracing
// context. The payload stays a typed Event in process; only the store
// boundary (eventstore/postgres) turns it into a document.
type Envelope struct {
	EventID       EventId
	AggregateID   AggregateId
	AggregateType string
	EventType     string
	Version       Version
	OccurredAt    time.Time
	Event         Event
	Metadata      map[string]any
}

// EnvelopeOption mutates an Envelope at construction time.
type EnvelopeOption func(*Envelope)

// WithMetadata sets a single metadata key, e.g. causation/correlation ids.
func WithMetadata(key string, value any) EnvelopeOption {
	return func(e *Envelope) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// WithOccurredAt overrides the default (now, UTC) timestamp. Mainly useful
// in tests that assert on exact timestamps.
func WithOccurredAt(t time.Time) EnvelopeOption {
	return func(e *Envelope) { e.OccurredAt = t }
}

var now = time.Now

// NewEnvelope builds an Envelope ready to be appended. version is the
// position this event will occupy once the append succeeds.
func NewEnvelope(event Event, aggregateID AggregateId, aggregateType string, version Version, opts ...EnvelopeOption) Envelope {
	env := Envelope{
		EventID:       NewEventId(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     event.EventType(),
		Version:       version,
		OccurredAt:    now().UTC().Truncate(time.Microsecond),
		Event:         event,
		Metadata:      make(map[string]any),
	}
	for _, opt := range opts {
		opt(&env)
	}
	return env
}
