package ordercore

// ReadModel is a query-side projection of one or more aggregates that
// reports the version of the last event it applied. The read models in
// projection/views do not implement it; they report progress through
// projection.Projection's Position.
type ReadModel interface {
	AppliedThrough() Version
}
