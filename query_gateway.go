package ordercore

import (
	"context"
	"errors"
	"fmt"
)

// ErrHandlerNotFound is returned when a GenericQueryGateway has no handler
// registered for the requested (query, result) type pair.
var ErrHandlerNotFound = errors.New("no handler registered for query")

// GenericQueryGateway adapts a QueryBus into a typed QueryHandler[T,R], so
// callers depend on a narrow interface instead of the bus's internal
// registry.
type GenericQueryGateway[T Query, R any] struct {
	bus *QueryBus
}

// NewQueryGateway builds a typed gateway over bus for query type T
// producing results of type R.
func NewQueryGateway[T Query, R any](bus *QueryBus) GenericQueryGateway[T, R] {
	return GenericQueryGateway[T, R]{bus: bus}
}

// HandleQuery looks up and invokes the handler registered for (T, R).
func (g GenericQueryGateway[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	handler, ok := lookupQueryHandler[T, R](g.bus)
	if !ok {
		var zero R
		return zero, fmt.Errorf("query %T: %w", qry, ErrHandlerNotFound)
	}
	return handler.HandleQuery(ctx, qry)
}
