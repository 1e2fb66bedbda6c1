package ordercore

// Aggregate is the minimal contract the command handler needs from any
// event-sourced aggregate: identity, current position in its stream, and
// the ability to fold a single event into its state. Domain-specific
// command methods (e.g. order.Order.Submit) live on the concrete type and
// are invoked directly by callers through CommandHandler.Execute.
type Aggregate interface {
	AggregateID() AggregateId
	AggregateType() string
	AggregateVersion() Version

	// Apply folds a single historical event into the aggregate's state and
	// advances AggregateVersion. Apply must be pure: no I/O, no new events,
	// no error return. It runs once per event during replay and once more
	// for every event a command just produced.
	Apply(event Event)
}

// SnapshotAggregate is implemented by aggregate types that support
// snapshot-assisted replay. It is optional: CommandHandler.LoadWithSnapshot
// falls back to full replay for aggregates that don't implement it.
type SnapshotAggregate interface {
	Aggregate

	// SnapshotState encodes the aggregate's current state, excluding
	// identity and version which the caller stores alongside it.
	SnapshotState() ([]byte, error)

	// RestoreSnapshot resets the aggregate to the state encoded in data,
	// as of the given version. Events after that version are replayed
	// with Apply on top of it.
	RestoreSnapshot(version Version, data []byte) error
}
