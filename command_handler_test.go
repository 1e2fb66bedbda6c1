package ordercore_test

import (
	"context"
	"errors"
	"testing"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/eventstore/memory"
)

type counterCreated struct{}

func (e counterCreated) EventType() string { return "CounterCreated" }

type counterIncremented struct{ By int }

func (e counterIncremented) EventType() string { return "CounterIncremented" }

type counter struct {
	id      ordercore.AggregateId
	version ordercore.Version
	value   int
}

func newCounter(id ordercore.AggregateId) *counter {
	return &counter{id: id}
}

func (c *counter) AggregateID() ordercore.AggregateId     { return c.id }
func (c *counter) AggregateType() string                  { return "counter" }
func (c *counter) AggregateVersion() ordercore.Version    { return c.version }

func (c *counter) Apply(event ordercore.Event) {
	switch e := event.(type) {
	case counterCreated:
		c.value = 0
	case counterIncremented:
		c.value += e.By
	}
	c.version = c.version.Next()
}

func TestCommandHandlerExecuteCreatesNewAggregate(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)
	id := ordercore.NewAggregateId()

	got, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return []ordercore.Event{counterCreated{}, counterIncremented{By: 5}}, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.value != 5 {
		t.Errorf("value = %d, want 5", got.value)
	}
	if got.AggregateVersion() != ordercore.Version(2) {
		t.Errorf("version = %d, want 2", got.AggregateVersion())
	}

	events, err := store.GetEventsForAggregate(context.Background(), id)
	if err != nil {
		t.Fatalf("GetEventsForAggregate() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("stored %d events, want 2", len(events))
	}
}

func TestCommandHandlerExecuteAppendsOnExistingAggregate(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)
	id := ordercore.NewAggregateId()

	if _, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return []ordercore.Event{counterCreated{}}, nil
	}); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	got, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return []ordercore.Event{counterIncremented{By: 3}}, nil
	})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if got.value != 3 {
		t.Errorf("value = %d, want 3", got.value)
	}
	if got.AggregateVersion() != ordercore.Version(2) {
		t.Errorf("version = %d, want 2", got.AggregateVersion())
	}
}

func TestCommandHandlerExecuteNoOp(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)
	id := ordercore.NewAggregateId()

	got, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.AggregateVersion() != ordercore.VersionZero {
		t.Errorf("version = %d, want 0", got.AggregateVersion())
	}

	events, err := store.GetEventsForAggregate(context.Background(), id)
	if err != nil {
		t.Fatalf("GetEventsForAggregate() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("stored %d events for a no-op command, want 0", len(events))
	}
}

func TestCommandHandlerExecutePropagatesDomainError(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)
	id := ordercore.NewAggregateId()

	wantErr := &ordercore.DomainError{Code: "counter.invalid", Message: "cannot increment by zero"}
	_, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return nil, wantErr
	})
	if !errors.Is(err, error(wantErr)) {
		t.Errorf("Execute() error = %v, want %v", err, wantErr)
	}
}

func TestCommandHandlerLoadNotFound(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)

	_, err := handler.Load(context.Background(), ordercore.NewAggregateId())

	var notFound *ordercore.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Load() error = %v, want *NotFoundError", err)
	}
}

func TestCommandHandlerLoadReplaysHistory(t *testing.T) {
	store := memory.New()
	handler := ordercore.NewCommandHandler(store, "counter", newCounter)
	id := ordercore.NewAggregateId()

	if _, err := handler.Execute(context.Background(), id, func(agg *counter) ([]ordercore.Event, error) {
		return []ordercore.Event{counterCreated{}, counterIncremented{By: 2}, counterIncremented{By: 4}}, nil
	}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, err := handler.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.value != 6 {
		t.Errorf("value = %d, want 6", got.value)
	}
}
