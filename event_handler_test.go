package ordercore_test

import (
	"context"
	"errors"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

type HandlerTestEventA struct{ Value string }

func (e HandlerTestEventA) EventType() string { return "HandlerTestEventA" }

type HandlerTestEventB struct{}

func (e HandlerTestEventB) EventType() string { return "HandlerTestEventB" }

func TestNewEventHandlerFunc(t *testing.T) {
	var received ordercore.Event
	handler := ordercore.NewEventHandlerFunc(func(ctx context.Context, event ordercore.Event) error {
		received = event
		return nil
	})

	want := HandlerTestEventA{Value: "x"}
	if err := handler.Handle(context.Background(), want); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if received != want {
		t.Errorf("received = %v, want %v", received, want)
	}
}

func TestOnEventSkipsWrongType(t *testing.T) {
	called := false
	handler := ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error {
		called = true
		return nil
	})

	err := handler.Handle(context.Background(), HandlerTestEventB{})

	var skipped ordercore.ErrSkippedEvent
	if !errors.As(err, &skipped) {
		t.Fatalf("Handle() error = %v, want ErrSkippedEvent", err)
	}
	if called {
		t.Error("typed handler invoked for the wrong event type")
	}
}

func TestOnEventHandlesMatchingType(t *testing.T) {
	var got HandlerTestEventA
	handler := ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error {
		got = ev
		return nil
	})

	want := HandlerTestEventA{Value: "y"}
	if err := handler.Handle(context.Background(), want); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got != want {
		t.Errorf("got = %v, want %v", got, want)
	}
}

func TestEventGroupProcessorRoutesByType(t *testing.T) {
	var gotA HandlerTestEventA
	var gotB bool

	group := ordercore.NewEventGroupProcessor(
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error {
			gotA = ev
			return nil
		}),
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventB) error {
			gotB = true
			return nil
		}),
	)

	if err := group.Handle(context.Background(), HandlerTestEventA{Value: "z"}); err != nil {
		t.Fatalf("Handle(A) error = %v", err)
	}
	if err := group.Handle(context.Background(), HandlerTestEventB{}); err != nil {
		t.Fatalf("Handle(B) error = %v", err)
	}

	if gotA.Value != "z" {
		t.Errorf("gotA.Value = %q, want %q", gotA.Value, "z")
	}
	if !gotB {
		t.Error("handler for HandlerTestEventB was not invoked")
	}
}

func TestEventGroupProcessorUnknownEventSkipped(t *testing.T) {
	group := ordercore.NewEventGroupProcessor(
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error { return nil }),
	)

	err := group.Handle(context.Background(), HandlerTestEventB{})

	var skipped ordercore.ErrSkippedEvent
	if !errors.As(err, &skipped) {
		t.Fatalf("Handle() error = %v, want ErrSkippedEvent", err)
	}
}

func TestEventGroupProcessorStreamFilter(t *testing.T) {
	group := ordercore.NewEventGroupProcessor(
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventB) error { return nil }),
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error { return nil }),
	)

	filter := group.StreamFilter()
	want := []string{"HandlerTestEventA", "HandlerTestEventB"}
	if len(filter) != len(want) {
		t.Fatalf("StreamFilter() = %v, want %v", filter, want)
	}
	for i := range want {
		if filter[i] != want[i] {
			t.Errorf("StreamFilter()[%d] = %q, want %q", i, filter[i], want[i])
		}
	}
}

func TestEventGroupProcessorDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic registering two handlers for the same event type")
		}
	}()

	ordercore.NewEventGroupProcessor(
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error { return nil }),
		ordercore.OnEvent(func(ctx context.Context, ev HandlerTestEventA) error { return nil }),
	)
}
