package ordercore

import "fmt"

// ConcurrencyConflictError is returned by EventStore.Append when the
// stream's actual version does not match the caller's ExpectedVersion.
// Callers reload the aggregate and retry the command from scratch.
// Expected is the numeric version New{}/Exact(v) resolved to (0 for
// New{}) rather than the ExpectedVersion value itself, so the error
// reads as "expected:0, actual:1" instead of "expected:{}, actual:1".
type ConcurrencyConflictError struct {
	AggregateID AggregateId
	Expected    Version
	Actual      Version
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict on aggregate %s: expected %d, actual version %d", e.AggregateID, e.Expected, e.Actual)
}

// InvalidBatchError is returned when a batch passed to Append violates the
// same-aggregate or strictly-sequential-version invariant.
type InvalidBatchError struct {
	Reason string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("invalid event batch: %s", e.Reason)
}

// NotFoundError is returned when an aggregate has no recorded events.
type NotFoundError struct {
	AggregateID AggregateId
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("aggregate %s not found", e.AggregateID)
}

// BackendError wraps any failure surfaced by the underlying persistence or
// transport layer that isn't one of the store's own sentinel conditions.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("backend error: %v", e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }

// WrapBackendError wraps a non-nil error from a storage driver. Passing
// nil returns nil so it composes with `return WrapBackendError(err)`.
func WrapBackendError(err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Err: err}
}

// DomainError is the taxonomy every aggregate-level validation failure
// belongs to: a stable Code plus a human-readable Message. Aggregate
// packages (order, saga) define their own Code constants and construct
// DomainError directly rather than inventing ad hoc error types.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// ErrSkippedEvent is returned by a Projection or EventHandler when it has
// no interest in the event type it was handed. The processor treats it as
// a no-op rather than a failure.
type ErrSkippedEvent struct {
	EventType string
}

func (e ErrSkippedEvent) Error() string { return fmt.Sprintf("skipped event of type %s", e.EventType) }
