package ordercore

import "testing"

func TestErrorStrings(t *testing.T) {
	id := NewAggregateId()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ConcurrencyConflictError",
			err: &ConcurrencyConflictError{
				AggregateID: id,
				Expected:    Version(5),
				Actual:      Version(7),
			},
			want: "concurrency conflict on aggregate " + id.String() + ": expected 5, actual version 7",
		},
		{
			name: "InvalidBatchError",
			err:  &InvalidBatchError{Reason: "empty batch"},
			want: "invalid event batch: empty batch",
		},
		{
			name: "NotFoundError",
			err:  &NotFoundError{AggregateID: id},
			want: "aggregate " + id.String() + " not found",
		},
		{
			name: "DomainError",
			err:  &DomainError{Code: "order.already_submitted", Message: "order already submitted"},
			want: "order.already_submitted: order already submitted",
		},
		{
			name: "ErrSkippedEvent",
			err:  ErrSkippedEvent{EventType: "LegacyRenamed"},
			want: "skipped event of type LegacyRenamed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	inner := &InvalidBatchError{Reason: "boom"}
	wrapped := WrapBackendError(inner)

	be, ok := wrapped.(*BackendError)
	if !ok {
		t.Fatalf("WrapBackendError returned %T, want *BackendError", wrapped)
	}
	if be.Unwrap() != inner {
		t.Errorf("Unwrap() = %v, want %v", be.Unwrap(), inner)
	}
}

func TestWrapBackendErrorNil(t *testing.T) {
	if err := WrapBackendError(nil); err != nil {
		t.Errorf("WrapBackendError(nil) = %v, want nil", err)
	}
}
