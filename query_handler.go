package ordercore

import "context"

// Query is implemented by any read request dispatched through a
// QueryHandler or the query package's bus.
type Query interface {
	QueryType() string
}

// QueryHandler answers queries of type T with a result of type R. T and R
// are almost always a query struct and the read-model data it returns,
// respectively (see query.GetOrderByID, query.ListCurrentOrders).
type QueryHandler[T Query, R any] interface {
	HandleQuery(ctx context.Context, qry T) (R, error)
}

type queryHandlerFunc[T Query, R any] func(ctx context.Context, qry T) (R, error)

func (f queryHandlerFunc[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	return f(ctx, qry)
}

// NewQueryHandlerFunc adapts a plain function to QueryHandler[T,R].
func NewQueryHandlerFunc[T Query, R any](fn func(ctx context.Context, qry T) (R, error)) QueryHandler[T, R] {
	return queryHandlerFunc[T, R](fn)
}
