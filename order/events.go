package order

import (
	ordercore "github.com/terraskye/ordercore"
)

func init() {
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderCreated{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &ItemAdded{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &ItemRemoved{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &ItemQuantityUpdated{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderSubmitted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderReserved{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderProcessing{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderCompleted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &OrderCancelled{} })
}

// OrderCreated is the first event of every Order stream.
type OrderCreated struct {
	OrderID    ordercore.AggregateId
	CustomerID string
}

func (OrderCreated) EventType() string { return "OrderCreated" }

// ItemAdded records a line item added to a Draft order, or a quantity
// bump if the product was already present.
type ItemAdded struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

func (ItemAdded) EventType() string { return "ItemAdded" }

// ItemRemoved drops a line item from a Draft order.
type ItemRemoved struct {
	ProductID string
}

func (ItemRemoved) EventType() string { return "ItemRemoved" }

// ItemQuantityUpdated replaces a line item's quantity outright, unlike
// ItemAdded which increments an existing line.
type ItemQuantityUpdated struct {
	ProductID string
	Quantity  int
}

func (ItemQuantityUpdated) EventType() string { return "ItemQuantityUpdated" }

// OrderSubmitted marks the hand-off point to fulfillment. Nothing in this
// module reacts to it; a saga is started with saga.Coordinator.Start.
// It carries no state change of its own; OrderReserved does that.
type OrderSubmitted struct{}

func (OrderSubmitted) EventType() string { return "OrderSubmitted" }

// OrderReserved moves the order to Reserved once inventory is to be
// pursued by the fulfillment saga.
type OrderReserved struct{}

func (OrderReserved) EventType() string { return "OrderReserved" }

// OrderProcessing moves the order to Processing once payment clears.
type OrderProcessing struct {
	PaymentRef string
}

func (OrderProcessing) EventType() string { return "OrderProcessing" }

// OrderCompleted is the terminal success event.
type OrderCompleted struct {
	TrackingNumber string
}

func (OrderCompleted) EventType() string { return "OrderCompleted" }

// OrderCancelled is the terminal rollback event.
type OrderCancelled struct {
	Reason string
}

func (OrderCancelled) EventType() string { return "OrderCancelled" }
