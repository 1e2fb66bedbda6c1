// Package idempotency de-duplicates retried calls to an external
// collaborator by caching the result of the first call under a caller
// supplied key. It is a fast-path cache only: the event log, not this
// package, is the durable source of truth for whether a saga step already
// ran (§4.F "Idempotency"). A cache miss here never means "definitely
// hasn't happened"; callers that need that guarantee check the saga
// aggregate's recorded state first.
package idempotency

import "context"

// Store caches the first-seen result for a (saga_id, step_name) key. Get
// returns ok=false on a miss. Put is a set-once: implementations store the
// first value written under a key and ignore subsequent writes for the
// same key, so a retry that races a slow first call still converges on one
// winner.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
}

// Key derives the idempotency key for one saga step, per §4.F: "the
// coordinator derives an idempotency key per (saga_id, step_name)".
func Key(sagaID, step string) string { return sagaID + ":" + step }
