package ordercore

// ExpectedVersion expresses the optimistic-concurrency precondition an
// Append call places on the target stream. It plays the same role as
// Revision in the upstream eventsourcing library, renamed to match the
// store's own vocabulary: Any, New, and Exact(version).
type ExpectedVersion interface {
	isExpectedVersion()
}

// Any appends regardless of the stream's current version.
type Any struct{}

func (Any) isExpectedVersion() {}

// New requires the stream to not exist yet (version zero).
type New struct{}

func (New) isExpectedVersion() {}

// Exact requires the stream to be at precisely this version before the
// append, i.e. the caller loaded the aggregate at this version and saw no
// concurrent writer since.
type Exact Version

func (Exact) isExpectedVersion() {}

// AppendOptions carries the concurrency precondition for an Append call.
type AppendOptions struct {
	ExpectedVersion ExpectedVersion
}
