package views

import (
	"context"
	"sync"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/order"
)

// ProductDemand is product-level demand aggregated across every order.
type ProductDemand struct {
	ProductID               string
	ProductName             string
	TotalQuantityOrdered    int64
	QuantityInActiveOrders  int64
	QuantityReserved        int64
	QuantityCompleted       int64
	TotalRevenueCents       int64
	OrderCount              int64
}

type orderStatus int

const (
	orderStatusActive orderStatus = iota
	orderStatusReserved
	orderStatusCompleted
	orderStatusCancelled
)

// InventoryDemand tracks, per product, how many units are on active
// orders, reserved, and completed, plus the revenue completed orders
// have generated.
type InventoryDemand struct {
	mu             sync.RWMutex
	products       map[string]*ProductDemand
	orderProducts  map[ordercore.AggregateId]map[string]OrderItemSummary
	orderStatus    map[ordercore.AggregateId]orderStatus
	position       uint64
}

// NewInventoryDemand returns an empty InventoryDemand view.
func NewInventoryDemand() *InventoryDemand {
	return &InventoryDemand{
		products:      make(map[string]*ProductDemand),
		orderProducts: make(map[ordercore.AggregateId]map[string]OrderItemSummary),
		orderStatus:   make(map[ordercore.AggregateId]orderStatus),
	}
}

func (v *InventoryDemand) Name() string { return "InventoryDemand" }
func (v *InventoryDemand) Position() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.position
}

func (v *InventoryDemand) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = make(map[string]*ProductDemand)
	v.orderProducts = make(map[ordercore.AggregateId]map[string]OrderItemSummary)
	v.orderStatus = make(map[ordercore.AggregateId]orderStatus)
	v.position = 0
}

func (v *InventoryDemand) demand(productID string) *ProductDemand {
	d, ok := v.products[productID]
	if !ok {
		d = &ProductDemand{ProductID: productID}
		v.products[productID] = d
	}
	return d
}

func (v *InventoryDemand) Handle(ctx context.Context, env ordercore.Envelope) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer func() { v.position++ }()

	switch e := env.Event.(type) {
	case order.OrderCreated:
		v.orderProducts[env.AggregateID] = make(map[string]OrderItemSummary)
		v.orderStatus[env.AggregateID] = orderStatusActive

	case order.ItemAdded:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		wasPresent := false
		if prev, ok := items[e.ProductID]; ok {
			wasPresent = true
			d := v.demand(e.ProductID)
			d.TotalQuantityOrdered -= int64(prev.Quantity)
			d.QuantityInActiveOrders -= int64(prev.Quantity)
		}
		item := items[e.ProductID]
		item.ProductID = e.ProductID
		item.ProductName = e.ProductName
		item.Quantity += e.Quantity
		item.UnitPriceCents = e.UnitPriceCents
		items[e.ProductID] = item

		d := v.demand(e.ProductID)
		d.ProductName = e.ProductName
		d.TotalQuantityOrdered += int64(item.Quantity)
		d.QuantityInActiveOrders += int64(item.Quantity)
		if !wasPresent {
			d.OrderCount++
		}

	case order.ItemRemoved:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		if prev, ok := items[e.ProductID]; ok {
			d := v.demand(e.ProductID)
			d.TotalQuantityOrdered -= int64(prev.Quantity)
			d.QuantityInActiveOrders -= int64(prev.Quantity)
			d.OrderCount--
			delete(items, e.ProductID)
		}

	case order.ItemQuantityUpdated:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		prev, ok := items[e.ProductID]
		if !ok {
			return nil
		}
		delta := int64(e.Quantity) - int64(prev.Quantity)
		prev.Quantity = e.Quantity
		items[e.ProductID] = prev

		d := v.demand(e.ProductID)
		d.TotalQuantityOrdered += delta
		d.QuantityInActiveOrders += delta

	case order.OrderReserved:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		v.orderStatus[env.AggregateID] = orderStatusReserved
		for productID, item := range items {
			d := v.demand(productID)
			d.QuantityInActiveOrders -= int64(item.Quantity)
			d.QuantityReserved += int64(item.Quantity)
		}

	case order.OrderCompleted:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		v.orderStatus[env.AggregateID] = orderStatusCompleted
		for productID, item := range items {
			d := v.demand(productID)
			d.QuantityReserved -= int64(item.Quantity)
			d.QuantityCompleted += int64(item.Quantity)
			d.TotalRevenueCents += int64(item.Quantity) * item.UnitPriceCents
		}

	case order.OrderCancelled:
		items, ok := v.orderProducts[env.AggregateID]
		if !ok {
			return nil
		}
		status := v.orderStatus[env.AggregateID]
		v.orderStatus[env.AggregateID] = orderStatusCancelled
		for productID, item := range items {
			d := v.demand(productID)
			switch status {
			case orderStatusReserved:
				d.QuantityReserved -= int64(item.Quantity)
			default:
				d.QuantityInActiveOrders -= int64(item.Quantity)
			}
		}
	}
	return nil
}

// Get returns demand for productID.
func (v *InventoryDemand) Get(productID string) (ProductDemand, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	d, ok := v.products[productID]
	if !ok {
		return ProductDemand{}, false
	}
	return *d, true
}

// List returns demand for every product seen, in no particular order.
func (v *InventoryDemand) List() []ProductDemand {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]ProductDemand, 0, len(v.products))
	for _, d := range v.products {
		out = append(out, *d)
	}
	return out
}
