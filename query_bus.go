package ordercore

import (
	"fmt"
)

// QueryBus is a central registry of query handlers keyed by their (query
// type, result type) pair. Handlers are executed through a typed
// GenericQueryGateway rather than through the bus directly, so callers
// never deal with the `any` values stored internally.
type QueryBus struct {
	handlers map[string]any
}

// NewQueryBus creates an empty QueryBus.
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[string]any)}
}

// RegisterQueryHandler registers handler for query type T producing
// results of type R. Registering a second handler for the same (T, R)
// pair overwrites the first.
func RegisterQueryHandler[T Query, R any](bus *QueryBus, handler QueryHandler[T, R]) {
	bus.handlers[queryKey[T, R]()] = handler
}

func queryKey[T Query, R any]() string {
	return fmt.Sprintf("%T|%T", *new(T), *new(R))
}

func lookupQueryHandler[T Query, R any](bus *QueryBus) (QueryHandler[T, R], bool) {
	v, ok := bus.handlers[queryKey[T, R]()]
	if !ok {
		return nil, false
	}
	h, ok := v.(QueryHandler[T, R])
	return h, ok
}
