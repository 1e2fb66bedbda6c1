package ordercore

import "context"

// SubscriberOption configures a single Subscribe call.
type SubscriberOption func(cfg any)

// EventBus distributes appended events, in process, to every subscriber
// whose filter matches. It is the transport between the command side
// (which appends events) and subscribers that react to them; no
// projection or saga code in this module subscribes to it. The durable event log, not the bus, is the
// source of truth: a subscriber that misses a dispatch because it wasn't
// running catches up by replaying the store directly.
type EventBus interface {
	// Subscribe registers handler to receive every dispatched envelope for
	// which filter returns true. name must be unique per bus instance.
	Subscribe(ctx context.Context, name string, filter func(Envelope) bool, handler EventHandler, options ...SubscriberOption) error

	// Dispatch publishes env to all matching subscribers. Dispatch does
	// not block on handler completion; delivery is best-effort and
	// asynchronous, with handler errors surfaced on Errors().
	Dispatch(env Envelope)

	// Errors returns a channel of errors raised by subscriber handlers.
	Errors() <-chan error

	// Close shuts down the bus and waits for all handlers to finish.
	Close() error
}
