package ordercore_test

import (
	"context"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

type stubEvent struct{ typ string }

func (e stubEvent) EventType() string { return e.typ }

func TestWithEnvelopeRoundTrip(t *testing.T) {
	env := ordercore.NewEnvelope(stubEvent{typ: "Stubbed"}, ordercore.NewAggregateId(), "stub", ordercore.Version(1))

	ctx := ordercore.WithEnvelope(context.Background(), env)

	got, ok := ordercore.EnvelopeFromContext(ctx)
	if !ok {
		t.Fatal("EnvelopeFromContext returned ok=false")
	}
	if got.EventID != env.EventID {
		t.Errorf("EventID = %v, want %v", got.EventID, env.EventID)
	}
}

func TestEnvelopeFromContextMissing(t *testing.T) {
	if _, ok := ordercore.EnvelopeFromContext(context.Background()); ok {
		t.Error("EnvelopeFromContext returned ok=true on bare context")
	}
}

func TestWithEnvelopePropagatesCorrelationAndCausation(t *testing.T) {
	causationID := ordercore.NewEventId()
	env := ordercore.NewEnvelope(stubEvent{typ: "Stubbed"}, ordercore.NewAggregateId(), "stub", ordercore.Version(1),
		ordercore.WithMetadata("causationId", causationID),
		ordercore.WithMetadata("correlationId", "corr-123"),
	)

	ctx := ordercore.WithEnvelope(context.Background(), env)

	if got, ok := ordercore.CausationIDFromContext(ctx); !ok || got != causationID {
		t.Errorf("CausationIDFromContext() = (%v, %v), want (%v, true)", got, ok, causationID)
	}
	if got := ordercore.CorrelationIDFromContext(ctx); got != "corr-123" {
		t.Errorf("CorrelationIDFromContext() = %q, want %q", got, "corr-123")
	}
}

func TestWithCorrelationID(t *testing.T) {
	ctx := ordercore.WithCorrelationID(context.Background(), "corr-abc")

	if got := ordercore.CorrelationIDFromContext(ctx); got != "corr-abc" {
		t.Errorf("CorrelationIDFromContext() = %q, want %q", got, "corr-abc")
	}
}

func TestCorrelationIDFromContextDefault(t *testing.T) {
	if got := ordercore.CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("CorrelationIDFromContext() = %q, want empty", got)
	}
}

func TestCausationIDFromContextMissing(t *testing.T) {
	if _, ok := ordercore.CausationIDFromContext(context.Background()); ok {
		t.Error("CausationIDFromContext returned ok=true on bare context")
	}
}
