package postgres

import (
	"encoding/json"
	"testing"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/order"
)

// TestDecodeRowsDereferencesRegistryPointers guards against a regression
// where decodeRows handed Apply a *order.OrderCreated (the registry's
// factories return pointers) instead of the order.OrderCreated value every
// Apply/projection type switch actually matches on. Without the
// dereference, a replayed aggregate would silently apply no events at
// all, though its version would still advance with each row.
func TestDecodeRowsDereferencesRegistryPointers(t *testing.T) {
	orderID := ordercore.NewAggregateId()
	createdPayload, err := json.Marshal(order.OrderCreated{OrderID: orderID, CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("marshal OrderCreated: %v", err)
	}
	itemPayload, err := json.Marshal(order.ItemAdded{ProductID: "SKU-001", ProductName: "Widget", Quantity: 2, UnitPriceCents: 1000})
	if err != nil {
		t.Fatalf("marshal ItemAdded: %v", err)
	}

	rows := []eventRow{
		{
			EventID:       ordercore.NewEventId().String(),
			AggregateID:   orderID.String(),
			AggregateType: "order",
			EventType:     "OrderCreated",
			Version:       1,
			Payload:       createdPayload,
		},
		{
			EventID:       ordercore.NewEventId().String(),
			AggregateID:   orderID.String(),
			AggregateType: "order",
			EventType:     "ItemAdded",
			Version:       2,
			Payload:       itemPayload,
		},
	}

	envelopes, err := decodeRows(rows)
	if err != nil {
		t.Fatalf("decodeRows() error = %v", err)
	}
	if len(envelopes) != 2 {
		t.Fatalf("len(envelopes) = %d, want 2", len(envelopes))
	}

	if _, ok := envelopes[0].Event.(order.OrderCreated); !ok {
		t.Fatalf("envelopes[0].Event is %T, want order.OrderCreated value", envelopes[0].Event)
	}
	if _, ok := envelopes[1].Event.(order.ItemAdded); !ok {
		t.Fatalf("envelopes[1].Event is %T, want order.ItemAdded value", envelopes[1].Event)
	}

	agg := order.New(orderID)
	for _, env := range envelopes {
		agg.Apply(env.Event)
	}
	if agg.State() != order.StateDraft {
		t.Fatalf("state = %v, want Draft", agg.State())
	}
	if agg.TotalCents() != 2000 {
		t.Fatalf("total = %d, want 2000 (replay must not be a silent no-op)", agg.TotalCents())
	}
}
