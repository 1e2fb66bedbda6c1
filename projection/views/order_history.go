package views

import (
	"context"
	"sync"
	"time"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/order"
)

// OrderHistorySummary is the OrderHistory view's entry for one completed
// or cancelled order.
type OrderHistorySummary struct {
	OrderID            ordercore.AggregateId
	CustomerID         string
	State              string
	ItemCount          int
	TotalCents         int64
	CreatedAt          time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	TrackingNumber     string
	CancellationReason string
	Items              map[string]OrderItemSummary
}

type orderHistoryStaging struct {
	customerID string
	createdAt  time.Time
	items      map[string]OrderItemSummary
}

func (s *orderHistoryStaging) totalCents() int64 {
	var total int64
	for _, it := range s.items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	return total
}

// OrderHistory tracks completed and cancelled orders. An order is staged
// while still in progress and moved into history the moment it reaches a
// terminal state.
type OrderHistory struct {
	mu       sync.RWMutex
	staging  map[ordercore.AggregateId]*orderHistoryStaging
	history  map[ordercore.AggregateId]*OrderHistorySummary
	position uint64
}

// NewOrderHistory returns an empty OrderHistory view.
func NewOrderHistory() *OrderHistory {
	return &OrderHistory{
		staging: make(map[ordercore.AggregateId]*orderHistoryStaging),
		history: make(map[ordercore.AggregateId]*OrderHistorySummary),
	}
}

func (v *OrderHistory) Name() string { return "OrderHistory" }
func (v *OrderHistory) Position() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.position
}

func (v *OrderHistory) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.staging = make(map[ordercore.AggregateId]*orderHistoryStaging)
	v.history = make(map[ordercore.AggregateId]*OrderHistorySummary)
	v.position = 0
}

func (v *OrderHistory) Handle(ctx context.Context, env ordercore.Envelope) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer func() { v.position++ }()

	switch e := env.Event.(type) {
	case order.OrderCreated:
		v.staging[e.OrderID] = &orderHistoryStaging{
			customerID: e.CustomerID,
			createdAt:  env.OccurredAt,
			items:      make(map[string]OrderItemSummary),
		}
	case order.ItemAdded:
		staged, ok := v.staging[env.AggregateID]
		if !ok {
			return nil
		}
		item := staged.items[e.ProductID]
		item.ProductID = e.ProductID
		item.ProductName = e.ProductName
		item.Quantity += e.Quantity
		item.UnitPriceCents = e.UnitPriceCents
		staged.items[e.ProductID] = item
	case order.ItemRemoved:
		if staged, ok := v.staging[env.AggregateID]; ok {
			delete(staged.items, e.ProductID)
		}
	case order.ItemQuantityUpdated:
		if staged, ok := v.staging[env.AggregateID]; ok {
			if item, ok := staged.items[e.ProductID]; ok {
				item.Quantity = e.Quantity
				staged.items[e.ProductID] = item
			}
		}
	case order.OrderCompleted:
		staged, ok := v.staging[env.AggregateID]
		if !ok {
			return nil
		}
		completedAt := env.OccurredAt
		v.history[env.AggregateID] = &OrderHistorySummary{
			OrderID:        env.AggregateID,
			CustomerID:     staged.customerID,
			State:          string(order.StateCompleted),
			ItemCount:      len(staged.items),
			TotalCents:     staged.totalCents(),
			CreatedAt:      staged.createdAt,
			CompletedAt:    &completedAt,
			TrackingNumber: e.TrackingNumber,
			Items:          staged.items,
		}
		delete(v.staging, env.AggregateID)
	case order.OrderCancelled:
		staged, ok := v.staging[env.AggregateID]
		if !ok {
			return nil
		}
		cancelledAt := env.OccurredAt
		v.history[env.AggregateID] = &OrderHistorySummary{
			OrderID:            env.AggregateID,
			CustomerID:         staged.customerID,
			State:              string(order.StateCancelled),
			ItemCount:          len(staged.items),
			TotalCents:         staged.totalCents(),
			CreatedAt:          staged.createdAt,
			CancelledAt:        &cancelledAt,
			CancellationReason: e.Reason,
			Items:              staged.items,
		}
		delete(v.staging, env.AggregateID)
	}
	return nil
}

// Get returns the historical summary for orderID, if it has terminated.
func (v *OrderHistory) Get(orderID ordercore.AggregateId) (OrderHistorySummary, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	h, ok := v.history[orderID]
	if !ok {
		return OrderHistorySummary{}, false
	}
	return *h, true
}

// List returns every terminated order, in no particular order.
func (v *OrderHistory) List() []OrderHistorySummary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]OrderHistorySummary, 0, len(v.history))
	for _, h := range v.history {
		out = append(out, *h)
	}
	return out
}
