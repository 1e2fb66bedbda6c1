// Package views implements the four canonical read models named in 4.E:
// CurrentOrders, OrderHistory, CustomerOrders, InventoryDemand. Each is an
// in-memory map guarded by its own mutex and derivable entirely from the
// event stream, so deleting one and running Processor.Rebuild against it
// is always safe.
package views

import (
	"context"
	"sync"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/order"
)

// OrderItemSummary is one line of an order as carried by a read model.
type OrderItemSummary struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

// CurrentOrderSummary is the CurrentOrders view's entry for one active
// (non-terminal) order.
type CurrentOrderSummary struct {
	OrderID    ordercore.AggregateId
	CustomerID string
	State      string
	ItemCount  int
	TotalCents int64
	Items      map[string]OrderItemSummary
}

func (s *CurrentOrderSummary) recalculate() {
	s.ItemCount = len(s.Items)
	var total int64
	for _, it := range s.Items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	s.TotalCents = total
}

// CurrentOrders tracks every order that has not yet reached a terminal
// state (Completed or Cancelled). Orders are removed from the view the
// moment they terminate.
type CurrentOrders struct {
	mu       sync.RWMutex
	orders   map[ordercore.AggregateId]*CurrentOrderSummary
	position uint64
}

// NewCurrentOrders returns an empty CurrentOrders view.
func NewCurrentOrders() *CurrentOrders {
	return &CurrentOrders{orders: make(map[ordercore.AggregateId]*CurrentOrderSummary)}
}

func (v *CurrentOrders) Name() string    { return "CurrentOrders" }
func (v *CurrentOrders) Position() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.position
}

func (v *CurrentOrders) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.orders = make(map[ordercore.AggregateId]*CurrentOrderSummary)
	v.position = 0
}

// Handle implements projection.Projection.
func (v *CurrentOrders) Handle(ctx context.Context, env ordercore.Envelope) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer func() { v.position++ }()

	switch e := env.Event.(type) {
	case order.OrderCreated:
		v.orders[e.OrderID] = &CurrentOrderSummary{
			OrderID:    e.OrderID,
			CustomerID: e.CustomerID,
			State:      string(order.StateDraft),
			Items:      make(map[string]OrderItemSummary),
		}
	case order.ItemAdded:
		ord, ok := v.orders[env.AggregateID]
		if !ok {
			return nil
		}
		item := ord.Items[e.ProductID]
		item.ProductID = e.ProductID
		item.ProductName = e.ProductName
		item.Quantity += e.Quantity
		item.UnitPriceCents = e.UnitPriceCents
		ord.Items[e.ProductID] = item
		ord.recalculate()
	case order.ItemRemoved:
		if ord, ok := v.orders[env.AggregateID]; ok {
			delete(ord.Items, e.ProductID)
			ord.recalculate()
		}
	case order.ItemQuantityUpdated:
		if ord, ok := v.orders[env.AggregateID]; ok {
			if item, ok := ord.Items[e.ProductID]; ok {
				item.Quantity = e.Quantity
				ord.Items[e.ProductID] = item
				ord.recalculate()
			}
		}
	case order.OrderReserved:
		if ord, ok := v.orders[env.AggregateID]; ok {
			ord.State = string(order.StateReserved)
		}
	case order.OrderProcessing:
		if ord, ok := v.orders[env.AggregateID]; ok {
			ord.State = string(order.StateProcessing)
		}
	case order.OrderCompleted, order.OrderCancelled:
		delete(v.orders, env.AggregateID)
	}
	return nil
}

// Get returns the current summary for orderID, if it is still active.
func (v *CurrentOrders) Get(orderID ordercore.AggregateId) (CurrentOrderSummary, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ord, ok := v.orders[orderID]
	if !ok {
		return CurrentOrderSummary{}, false
	}
	return *ord, true
}

// List returns every currently active order, in no particular order.
func (v *CurrentOrders) List() []CurrentOrderSummary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]CurrentOrderSummary, 0, len(v.orders))
	for _, ord := range v.orders {
		out = append(out, *ord)
	}
	return out
}
