// Package query is the read side's query-time counterpart to the
// command side's CommandHandler: a typed QueryBus + GenericQueryGateway
// (ordercore's own, grounded on the teacher's query_bus.go/
// query_gateway.go) dispatching onto the read models in
// projection/views.
package query

import (
	"context"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/projection/views"
)

// GetOrderByID looks a single order up by id, checking the active view
// first and falling back to history for terminated orders.
type GetOrderByID struct {
	OrderID ordercore.AggregateId
}

func (GetOrderByID) QueryType() string { return "GetOrderByID" }

// OrderView is the unified result of GetOrderByID: whichever of
// CurrentOrders/OrderHistory held the order, normalized to one shape.
type OrderView struct {
	OrderID            ordercore.AggregateId
	CustomerID         string
	State              string
	ItemCount          int
	TotalCents         int64
	TrackingNumber     string
	CancellationReason string
}

// ListCurrentOrders returns every order that has not yet reached a
// terminal state.
type ListCurrentOrders struct{}

func (ListCurrentOrders) QueryType() string { return "ListCurrentOrders" }

// ListOrdersByCustomer returns order statistics for one customer.
type ListOrdersByCustomer struct {
	CustomerID string
}

func (ListOrdersByCustomer) QueryType() string { return "ListOrdersByCustomer" }

// GetInventoryDemand returns demand for one product.
type GetInventoryDemand struct {
	ProductID string
}

func (GetInventoryDemand) QueryType() string { return "GetInventoryDemand" }

// Gateway bundles the read models a query layer dispatches against.
// Built once at startup and wired into the per-query-type handlers
// registered with NewBus.
type Gateway struct {
	Current   *views.CurrentOrders
	History   *views.OrderHistory
	Customers *views.CustomerOrders
	Inventory *views.InventoryDemand
}

// NewBus builds a QueryBus with a handler registered for every query
// type this package defines, each backed by g's read models.
func NewBus(g *Gateway) *ordercore.QueryBus {
	bus := ordercore.NewQueryBus()

	ordercore.RegisterQueryHandler[GetOrderByID, *OrderView](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, q GetOrderByID) (*OrderView, error) {
			if current, ok := g.Current.Get(q.OrderID); ok {
				return &OrderView{
					OrderID:    current.OrderID,
					CustomerID: current.CustomerID,
					State:      current.State,
					ItemCount:  current.ItemCount,
					TotalCents: current.TotalCents,
				}, nil
			}
			if hist, ok := g.History.Get(q.OrderID); ok {
				return &OrderView{
					OrderID:            hist.OrderID,
					CustomerID:         hist.CustomerID,
					State:              hist.State,
					ItemCount:          hist.ItemCount,
					TotalCents:         hist.TotalCents,
					TrackingNumber:     hist.TrackingNumber,
					CancellationReason: hist.CancellationReason,
				}, nil
			}
			return nil, &ordercore.NotFoundError{AggregateID: q.OrderID}
		}))

	ordercore.RegisterQueryHandler[ListCurrentOrders, []views.CurrentOrderSummary](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, _ ListCurrentOrders) ([]views.CurrentOrderSummary, error) {
			return g.Current.List(), nil
		}))

	ordercore.RegisterQueryHandler[ListOrdersByCustomer, views.CustomerOrdersSummary](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, q ListOrdersByCustomer) (views.CustomerOrdersSummary, error) {
			summary, ok := g.Customers.Get(q.CustomerID)
			if !ok {
				return views.CustomerOrdersSummary{}, &ordercore.DomainError{Code: "query.customer_not_found", Message: "no orders for customer " + q.CustomerID}
			}
			return summary, nil
		}))

	ordercore.RegisterQueryHandler[GetInventoryDemand, views.ProductDemand](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, q GetInventoryDemand) (views.ProductDemand, error) {
			demand, ok := g.Inventory.Get(q.ProductID)
			if !ok {
				return views.ProductDemand{}, &ordercore.DomainError{Code: "query.product_not_found", Message: "no demand recorded for product " + q.ProductID}
			}
			return demand, nil
		}))

	return bus
}
