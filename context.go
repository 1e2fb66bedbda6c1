package ordercore

import (
	"context"
)

type ctxKey string

const (
	causationIDKey   ctxKey = "causationID"
	correlationIDKey ctxKey = "correlationID"
	envelopeKey      ctxKey = "envelope"
)

// WithEnvelope attaches the envelope currently being handled to ctx, so
// handlers several calls deep (projections, saga step callbacks) can read
// which event triggered them without threading it through every signature.
func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	ctx = context.WithValue(ctx, envelopeKey, env)
	if cid, ok := env.Metadata["causationId"].(EventId); ok {
		ctx = context.WithValue(ctx, causationIDKey, cid)
	}
	if cid, ok := env.Metadata["correlationId"].(string); ok {
		ctx = context.WithValue(ctx, correlationIDKey, cid)
	}
	return ctx
}

// EnvelopeFromContext returns the envelope attached by WithEnvelope, if any.
func EnvelopeFromContext(ctx context.Context) (Envelope, bool) {
	env, ok := ctx.Value(envelopeKey).(Envelope)
	return env, ok
}

// WithCorrelationID attaches a correlation id that should be propagated to
// every event caused, directly or transitively, by the current operation.
// The saga coordinator does not call it, so saga events carry no
// correlation id unless the caller's ctx already has one.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext returns the correlation id, or "" if none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// CausationIDFromContext returns the id of the event that caused the
// current operation, or uuid.Nil-equivalent zero value if none was set.
func CausationIDFromContext(ctx context.Context) (EventId, bool) {
	v, ok := ctx.Value(causationIDKey).(EventId)
	return v, ok
}
