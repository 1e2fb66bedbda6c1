// Package order implements the Order aggregate: its state machine,
// commands, events, and the domain errors raised when a command violates
// a precondition. Everything here is pure — no I/O, no clock reads beyond
// what ordercore.NewEnvelope stamps at append time.
package order

import (
	"encoding/json"

	ordercore "github.com/terraskye/ordercore"
)

// State is one of the five points in the Order lifecycle.
type State string

const (
	StateDraft      State = "Draft"
	StateReserved   State = "Reserved"
	StateProcessing State = "Processing"
	StateCompleted  State = "Completed"
	StateCancelled  State = "Cancelled"
)

// Item is one line of an order. Prices are integer cents; there is no
// floating point anywhere in the money path.
type Item struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

// Order is the event-sourced aggregate. Zero value is a valid "not yet
// created" instance ready to have CreateOrder's event applied to it.
type Order struct {
	id                 ordercore.AggregateId
	customerID         string
	state              State
	items              []Item
	version            ordercore.Version
	trackingNumber     string
	cancellationReason string
}

// New returns a zero-value Order identified by id, ready for replay.
func New(id ordercore.AggregateId) *Order {
	return &Order{id: id}
}

func (o *Order) AggregateID() ordercore.AggregateId  { return o.id }
func (o *Order) AggregateType() string               { return "order" }
func (o *Order) AggregateVersion() ordercore.Version { return o.version }

func (o *Order) CustomerID() string         { return o.customerID }
func (o *Order) State() State               { return o.state }
func (o *Order) Items() []Item              { return append([]Item(nil), o.items...) }
func (o *Order) TrackingNumber() string     { return o.trackingNumber }
func (o *Order) CancellationReason() string { return o.cancellationReason }

// TotalCents sums quantity*unit_price_cents over every current item.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, it := range o.items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	return total
}

func (o *Order) itemIndex(productID string) int {
	for i, it := range o.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Apply folds a single historical OrderEvent into the aggregate. It is
// pure: the same event sequence always produces the same resulting state
// regardless of wall-clock time.
func (o *Order) Apply(event ordercore.Event) {
	switch e := event.(type) {
	case OrderCreated:
		o.id = e.OrderID
		o.customerID = e.CustomerID
		o.state = StateDraft
		o.items = nil
	case ItemAdded:
		if idx := o.itemIndex(e.ProductID); idx >= 0 {
			o.items[idx].Quantity += e.Quantity
		} else {
			o.items = append(o.items, Item{
				ProductID:      e.ProductID,
				ProductName:    e.ProductName,
				Quantity:       e.Quantity,
				UnitPriceCents: e.UnitPriceCents,
			})
		}
	case ItemRemoved:
		if idx := o.itemIndex(e.ProductID); idx >= 0 {
			o.items = append(o.items[:idx], o.items[idx+1:]...)
		}
	case ItemQuantityUpdated:
		if idx := o.itemIndex(e.ProductID); idx >= 0 {
			o.items[idx].Quantity = e.Quantity
		}
	case OrderSubmitted:
		// Reservation happens on OrderReserved; OrderSubmitted only marks
		// the hand-off point to fulfillment.
	case OrderReserved:
		o.state = StateReserved
	case OrderProcessing:
		o.state = StateProcessing
	case OrderCompleted:
		o.state = StateCompleted
		o.trackingNumber = e.TrackingNumber
	case OrderCancelled:
		o.state = StateCancelled
		o.cancellationReason = e.Reason
	}
	o.version = o.version.Next()
}

// snapshotState is the JSON encoding SnapshotState/RestoreSnapshot round-trip.
// It excludes id and version: CommandHandler.LoadWithSnapshot carries those
// alongside the raw bytes via Snapshot.AggregateID/Version.
type snapshotState struct {
	CustomerID         string `json:"customer_id"`
	State              State  `json:"state"`
	Items              []Item `json:"items"`
	TrackingNumber     string `json:"tracking_number"`
	CancellationReason string `json:"cancellation_reason"`
}

// SnapshotState implements ordercore.SnapshotAggregate.
func (o *Order) SnapshotState() ([]byte, error) {
	return json.Marshal(snapshotState{
		CustomerID:         o.customerID,
		State:              o.state,
		Items:              o.items,
		TrackingNumber:     o.trackingNumber,
		CancellationReason: o.cancellationReason,
	})
}

// RestoreSnapshot implements ordercore.SnapshotAggregate. The id given to
// New is preserved; version is set by the caller (CommandHandler) to the
// snapshot's recorded version.
func (o *Order) RestoreSnapshot(version ordercore.Version, data []byte) error {
	var s snapshotState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.customerID = s.CustomerID
	o.state = s.State
	o.items = s.Items
	o.trackingNumber = s.TrackingNumber
	o.cancellationReason = s.CancellationReason
	o.version = version
	return nil
}
