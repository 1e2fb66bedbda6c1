package ordercore

import (
	"context"
	"io"
)

// Iterator is a lazy, single-pass sequence of T produced on demand by a
// next function. Backends implement next by pulling a batch at a time
// from the underlying storage and returning io.EOF once exhausted; callers
// never see io.EOF directly, it is translated into Next returning false.
type Iterator[T any] struct {
	next    func(ctx context.Context) (T, error)
	current T
	err     error
	done    bool
}

// NewIteratorFunc builds an Iterator from a next function. next must
// return io.EOF (with a zero T) once there are no more items.
func NewIteratorFunc[T any](next func(ctx context.Context) (T, error)) *Iterator[T] {
	return &Iterator[T]{next: next}
}

// NewSliceIterator builds an Iterator that replays a fixed slice. Useful
// in tests and for in-memory backends that materialize results eagerly.
func NewSliceIterator[T any](items []T) *Iterator[T] {
	i := 0
	return NewIteratorFunc(func(ctx context.Context) (T, error) {
		var zero T
		if i >= len(items) {
			return zero, io.EOF
		}
		item := items[i]
		i++
		return item, nil
	})
}

// Next advances the iterator. It returns false once the sequence is
// exhausted or an error occurred; check Err to tell the two apart.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	item, err := it.next(ctx)
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		it.done = true
		return false
	}
	it.current = item
	return true
}

// Value returns the item produced by the most recent successful Next call.
func (it *Iterator[T]) Value() T { return it.current }

// Err returns the error that stopped iteration, or nil on clean exhaustion.
func (it *Iterator[T]) Err() error { return it.err }

// All drains the iterator into a slice.
func (it *Iterator[T]) All(ctx context.Context) ([]T, error) {
	var results []T
	for it.Next(ctx) {
		results = append(results, it.Value())
	}
	return results, it.Err()
}
