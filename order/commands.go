package order

import (
	"github.com/go-playground/validator/v10"

	ordercore "github.com/terraskye/ordercore"
)

var validate = validator.New()

// Error codes for the DomainError taxonomy this package raises. Callers
// inspect these with errors.As(&ordercore.DomainError{}) and switch on Code.
const (
	ErrAlreadyExists          = "order.already_exists"
	ErrInvalidStateTransition = "order.invalid_state_transition"
	ErrOrderEmpty             = "order.empty"
	ErrInvalidQuantity        = "order.invalid_quantity"
	ErrItemNotFound           = "order.item_not_found"
)

func invalidTransition(from State, operation string) error {
	return &ordercore.DomainError{
		Code:    ErrInvalidStateTransition,
		Message: "cannot " + operation + " while order is " + string(from),
	}
}

// CreateOrder is the only command valid against an order that does not
// exist yet. id is the AggregateId the caller has already minted;
// customerID may be empty (a guest order).
type CreateOrder struct {
	OrderID    ordercore.AggregateId
	CustomerID string
}

// Create validates and produces OrderCreated. o must be the zero-value
// (not-yet-created) instance; calling this against an order that already
// has a state returns AlreadyExists.
func (o *Order) Create(cmd CreateOrder) ([]ordercore.Event, error) {
	if o.state != "" {
		return nil, &ordercore.DomainError{Code: ErrAlreadyExists, Message: "order already exists"}
	}
	return []ordercore.Event{OrderCreated{OrderID: cmd.OrderID, CustomerID: cmd.CustomerID}}, nil
}

// AddItem appends a new line item, or increments an existing one's
// quantity. Only permitted while the order is Draft.
type AddItem struct {
	ProductID      string `validate:"required"`
	ProductName    string
	Quantity       int   `validate:"gte=1"`
	UnitPriceCents int64 `validate:"gte=0"`
}

// AddItem validates cmd and, if the order is Draft, produces ItemAdded.
func (o *Order) AddItem(cmd AddItem) ([]ordercore.Event, error) {
	if o.state != StateDraft {
		return nil, invalidTransition(o.state, "add item")
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, &ordercore.DomainError{Code: ErrInvalidQuantity, Message: err.Error()}
	}
	return []ordercore.Event{ItemAdded{
		ProductID:      cmd.ProductID,
		ProductName:    cmd.ProductName,
		Quantity:       cmd.Quantity,
		UnitPriceCents: cmd.UnitPriceCents,
	}}, nil
}

// RemoveItem drops a line item entirely. Only permitted while Draft.
type RemoveItem struct {
	ProductID string `validate:"required"`
}

// RemoveItem validates cmd and, if the product is present on a Draft
// order, produces ItemRemoved.
func (o *Order) RemoveItem(cmd RemoveItem) ([]ordercore.Event, error) {
	if o.state != StateDraft {
		return nil, invalidTransition(o.state, "remove item")
	}
	if o.itemIndex(cmd.ProductID) < 0 {
		return nil, &ordercore.DomainError{Code: ErrItemNotFound, Message: "product " + cmd.ProductID + " not on order"}
	}
	return []ordercore.Event{ItemRemoved{ProductID: cmd.ProductID}}, nil
}

// UpdateItemQuantity replaces (not increments) a line item's quantity.
// Only permitted while Draft.
type UpdateItemQuantity struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"gte=1"`
}

// UpdateItemQuantity validates cmd and, if the product is present on a
// Draft order, produces ItemQuantityUpdated.
func (o *Order) UpdateItemQuantity(cmd UpdateItemQuantity) ([]ordercore.Event, error) {
	if o.state != StateDraft {
		return nil, invalidTransition(o.state, "update item quantity")
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, &ordercore.DomainError{Code: ErrInvalidQuantity, Message: err.Error()}
	}
	if o.itemIndex(cmd.ProductID) < 0 {
		return nil, &ordercore.DomainError{Code: ErrItemNotFound, Message: "product " + cmd.ProductID + " not on order"}
	}
	return []ordercore.Event{ItemQuantityUpdated{ProductID: cmd.ProductID, Quantity: cmd.Quantity}}, nil
}

// SubmitOrder moves a Draft order with at least one item into Reserved,
// via the hand-off event OrderSubmitted followed by OrderReserved. No
// component in this module subscribes to OrderSubmitted; fulfillment
// begins when a caller invokes saga.Coordinator.Start.
type SubmitOrder struct{}

// Submit validates the order is Draft and non-empty, and produces
// OrderSubmitted, OrderReserved.
func (o *Order) Submit(_ SubmitOrder) ([]ordercore.Event, error) {
	if o.state != StateDraft {
		return nil, invalidTransition(o.state, "submit order")
	}
	if len(o.items) == 0 {
		return nil, &ordercore.DomainError{Code: ErrOrderEmpty, Message: "order has no items"}
	}
	return []ordercore.Event{OrderSubmitted{}, OrderReserved{}}, nil
}

// ConfirmPayment moves a Reserved order into Processing once the saga's
// payment step has cleared.
type ConfirmPayment struct {
	PaymentRef string
}

// ConfirmPayment validates the order is Reserved and produces
// OrderProcessing.
func (o *Order) ConfirmPayment(cmd ConfirmPayment) ([]ordercore.Event, error) {
	if o.state != StateReserved {
		return nil, invalidTransition(o.state, "confirm payment")
	}
	return []ordercore.Event{OrderProcessing{PaymentRef: cmd.PaymentRef}}, nil
}

// CompleteOrder moves a Processing order to the terminal Completed state
// once shipping has produced a tracking number.
type CompleteOrder struct {
	TrackingNumber string `validate:"required"`
}

// Complete validates the order is Processing and produces OrderCompleted.
func (o *Order) Complete(cmd CompleteOrder) ([]ordercore.Event, error) {
	if o.state != StateProcessing {
		return nil, invalidTransition(o.state, "complete order")
	}
	return []ordercore.Event{OrderCompleted{TrackingNumber: cmd.TrackingNumber}}, nil
}

// CancelOrder moves any non-terminal order to the terminal Cancelled
// state. Cancelling a Completed or already-Cancelled order is rejected.
type CancelOrder struct {
	Reason string
}

// Cancel validates the order is in a cancellable state and produces
// OrderCancelled.
func (o *Order) Cancel(cmd CancelOrder) ([]ordercore.Event, error) {
	switch o.state {
	case StateDraft, StateReserved, StateProcessing:
		return []ordercore.Event{OrderCancelled{Reason: cmd.Reason}}, nil
	default:
		return nil, invalidTransition(o.state, "cancel order")
	}
}
