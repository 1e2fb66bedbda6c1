package query

import (
	"context"
	"fmt"
	"sync"

	ioquery "github.com/io-da/query"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/projection/views"
)

// Dispatcher adapts this package's typed QueryBus onto io-da/query's
// transport-facing ioquery.Handler, the same boundary the teacher's
// queryprovider.go drew between its generic query infrastructure and
// whatever delivers queries at the edge (HTTP, a message queue, ...).
//
// The teacher's own version registered handlers keyed off a zero value
// of the *interface* type query.Query, which panics on the required
// reflection (there is no concrete type to reflect on a nil interface).
// RegisterRoute fixes this by capturing the concrete query type T as a
// compile-time generic parameter, the same way ordercore.
// RegisterQueryHandler captures T for the root QueryBus.
type Dispatcher struct {
	mu    sync.RWMutex
	route map[string]func(ctx context.Context, qry ioquery.Query) (any, error)
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{route: make(map[string]func(ctx context.Context, qry ioquery.Query) (any, error))}
}

// RegisterRoute wires query type T's ordercore.GenericQueryGateway into
// the dispatcher, so a Dispatcher.Handle call carrying a T is routed to
// it.
func RegisterRoute[T ordercore.Query, R any](d *Dispatcher, gateway ordercore.GenericQueryGateway[T, R]) {
	var zero T
	name := ordercore.TypeName(zero)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.route[name] = func(ctx context.Context, raw ioquery.Query) (any, error) {
		qry, ok := raw.(T)
		if !ok {
			return nil, fmt.Errorf("query dispatcher: route %q received %T, want %T", name, raw, zero)
		}
		return gateway.HandleQuery(ctx, qry)
	}
}

// Handle implements ioquery.Handler: it looks up qry's registered route
// by its concrete type name and invokes it, reporting the result through
// res exactly as io-da/query expects (Add then Done).
func (d *Dispatcher) Handle(ctx context.Context, qry ioquery.Query, res *ioquery.Result) error {
	d.mu.RLock()
	route, ok := d.route[ordercore.TypeName(qry)]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("query dispatcher: unknown query type %s", ordercore.TypeName(qry))
	}

	result, err := route(ctx, qry)
	if err != nil {
		return err
	}
	res.Add(result)
	res.Done()
	return nil
}

// NewGatewayDispatcher builds a Dispatcher with every query type this
// package defines routed through bus (as built by NewBus). The (T, R)
// pairs here must match what NewBus registered for each query type.
func NewGatewayDispatcher(bus *ordercore.QueryBus) *Dispatcher {
	d := NewDispatcher()
	RegisterRoute(d, ordercore.NewQueryGateway[GetOrderByID, *OrderView](bus))
	RegisterRoute(d, ordercore.NewQueryGateway[ListCurrentOrders, []views.CurrentOrderSummary](bus))
	RegisterRoute(d, ordercore.NewQueryGateway[ListOrdersByCustomer, views.CustomerOrdersSummary](bus))
	RegisterRoute(d, ordercore.NewQueryGateway[GetInventoryDemand, views.ProductDemand](bus))
	return d
}
