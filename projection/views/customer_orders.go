package views

import (
	"context"
	"sync"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/order"
)

// CustomerOrdersSummary is per-customer order statistics.
type CustomerOrdersSummary struct {
	CustomerID      string
	TotalOrders     int
	ActiveOrders    int
	CompletedOrders int
	CancelledOrders int
	TotalSpentCents int64
	OrderIDs        []ordercore.AggregateId
}

type customerOrderTracker struct {
	items map[string]OrderItemSummary
}

func (t *customerOrderTracker) totalCents() int64 {
	var total int64
	for _, it := range t.items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	return total
}

// CustomerOrders tracks, per customer, how many orders are active versus
// terminal and how much the customer has spent on completed orders.
type CustomerOrders struct {
	mu               sync.RWMutex
	customers        map[string]*CustomerOrdersSummary
	orderToCustomer  map[ordercore.AggregateId]string
	orderItems       map[ordercore.AggregateId]*customerOrderTracker
	position         uint64
}

// NewCustomerOrders returns an empty CustomerOrders view.
func NewCustomerOrders() *CustomerOrders {
	return &CustomerOrders{
		customers:       make(map[string]*CustomerOrdersSummary),
		orderToCustomer: make(map[ordercore.AggregateId]string),
		orderItems:      make(map[ordercore.AggregateId]*customerOrderTracker),
	}
}

func (v *CustomerOrders) Name() string { return "CustomerOrders" }
func (v *CustomerOrders) Position() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.position
}

func (v *CustomerOrders) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.customers = make(map[string]*CustomerOrdersSummary)
	v.orderToCustomer = make(map[ordercore.AggregateId]string)
	v.orderItems = make(map[ordercore.AggregateId]*customerOrderTracker)
	v.position = 0
}

func (v *CustomerOrders) Handle(ctx context.Context, env ordercore.Envelope) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer func() { v.position++ }()

	switch e := env.Event.(type) {
	case order.OrderCreated:
		v.orderToCustomer[e.OrderID] = e.CustomerID
		v.orderItems[e.OrderID] = &customerOrderTracker{items: make(map[string]OrderItemSummary)}

		cust, ok := v.customers[e.CustomerID]
		if !ok {
			cust = &CustomerOrdersSummary{CustomerID: e.CustomerID}
			v.customers[e.CustomerID] = cust
		}
		cust.TotalOrders++
		cust.ActiveOrders++
		cust.OrderIDs = append(cust.OrderIDs, e.OrderID)

	case order.ItemAdded:
		tracker, ok := v.orderItems[env.AggregateID]
		if !ok {
			return nil
		}
		item := tracker.items[e.ProductID]
		item.ProductID = e.ProductID
		item.Quantity += e.Quantity
		item.UnitPriceCents = e.UnitPriceCents
		tracker.items[e.ProductID] = item

	case order.ItemRemoved:
		if tracker, ok := v.orderItems[env.AggregateID]; ok {
			delete(tracker.items, e.ProductID)
		}

	case order.ItemQuantityUpdated:
		if tracker, ok := v.orderItems[env.AggregateID]; ok {
			if item, ok := tracker.items[e.ProductID]; ok {
				item.Quantity = e.Quantity
				tracker.items[e.ProductID] = item
			}
		}

	case order.OrderCompleted:
		customerID, ok := v.orderToCustomer[env.AggregateID]
		if !ok {
			return nil
		}
		cust := v.customers[customerID]
		cust.ActiveOrders--
		cust.CompletedOrders++
		if tracker, ok := v.orderItems[env.AggregateID]; ok {
			cust.TotalSpentCents += tracker.totalCents()
		}

	case order.OrderCancelled:
		customerID, ok := v.orderToCustomer[env.AggregateID]
		if !ok {
			return nil
		}
		cust := v.customers[customerID]
		cust.ActiveOrders--
		cust.CancelledOrders++
	}
	return nil
}

// Get returns statistics for customerID.
func (v *CustomerOrders) Get(customerID string) (CustomerOrdersSummary, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cust, ok := v.customers[customerID]
	if !ok {
		return CustomerOrdersSummary{}, false
	}
	out := *cust
	out.OrderIDs = append([]ordercore.AggregateId(nil), cust.OrderIDs...)
	return out, true
}
