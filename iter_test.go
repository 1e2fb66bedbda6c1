package ordercore_test

import (
	"context"
	"errors"
	"io"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

func TestIteratorBasic(t *testing.T) {
	items := []int{1, 2, 3}
	i := 0

	iter := ordercore.NewIteratorFunc(func(ctx context.Context) (int, error) {
		if i >= len(items) {
			return 0, io.EOF
		}
		val := items[i]
		i++
		return val, nil
	})

	var got []int
	for iter.Next(context.Background()) {
		got = append(got, iter.Value())
	}

	if err := iter.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %v items, want %v", got, items)
	}
	for idx, v := range items {
		if got[idx] != v {
			t.Errorf("got[%d] = %d, want %d", idx, got[idx], v)
		}
	}
}

func TestIteratorPropagatesError(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	iter := ordercore.NewIteratorFunc(func(ctx context.Context) (int, error) {
		return 0, wantErr
	})

	if iter.Next(context.Background()) {
		t.Fatal("Next() = true, want false on error")
	}
	if !errors.Is(iter.Err(), wantErr) {
		t.Errorf("Err() = %v, want %v", iter.Err(), wantErr)
	}
}

func TestIteratorStopsAfterError(t *testing.T) {
	calls := 0
	iter := ordercore.NewIteratorFunc(func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	iter.Next(context.Background())
	iter.Next(context.Background())
	iter.Next(context.Background())

	if calls != 1 {
		t.Errorf("next function called %d times after error, want 1", calls)
	}
}

func TestNewSliceIterator(t *testing.T) {
	iter := ordercore.NewSliceIterator([]string{"a", "b", "c"})

	got, err := iter.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewSliceIteratorEmpty(t *testing.T) {
	iter := ordercore.NewSliceIterator[int](nil)

	if iter.Next(context.Background()) {
		t.Fatal("Next() = true on empty iterator")
	}
	if err := iter.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestIteratorAll(t *testing.T) {
	iter := ordercore.NewSliceIterator([]int{1, 2, 3, 4})

	got, err := iter.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("All() returned %d items, want 4", len(got))
	}
}
