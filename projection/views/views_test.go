package views_test

import (
	"context"
	"testing"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/eventstore/memory"
	"github.com/terraskye/ordercore/order"
	"github.com/terraskye/ordercore/projection"
	"github.com/terraskye/ordercore/projection/views"
)

func buildStore(t *testing.T) (*memory.Store, ordercore.AggregateId, ordercore.AggregateId) {
	t.Helper()
	store := memory.New()
	orders := ordercore.NewCommandHandler(store, "order", order.New)
	ctx := context.Background()

	completed := ordercore.NewAggregateId()
	if _, err := orders.Execute(ctx, completed, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Create(order.CreateOrder{OrderID: completed, CustomerID: "cust-1"})
	}); err != nil {
		t.Fatalf("create completed order: %v", err)
	}
	if _, err := orders.Execute(ctx, completed, func(o *order.Order) ([]ordercore.Event, error) {
		return o.AddItem(order.AddItem{ProductID: "SKU-001", ProductName: "Widget", Quantity: 2, UnitPriceCents: 1000})
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := orders.Execute(ctx, completed, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Submit(order.SubmitOrder{})
	}); err != nil {
		t.Fatalf("submit order: %v", err)
	}
	if _, err := orders.Execute(ctx, completed, func(o *order.Order) ([]ordercore.Event, error) {
		return o.ConfirmPayment(order.ConfirmPayment{PaymentRef: "PAY-1"})
	}); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if _, err := orders.Execute(ctx, completed, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Complete(order.CompleteOrder{TrackingNumber: "TRACK-1"})
	}); err != nil {
		t.Fatalf("complete order: %v", err)
	}

	active := ordercore.NewAggregateId()
	if _, err := orders.Execute(ctx, active, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Create(order.CreateOrder{OrderID: active, CustomerID: "cust-2"})
	}); err != nil {
		t.Fatalf("create active order: %v", err)
	}
	if _, err := orders.Execute(ctx, active, func(o *order.Order) ([]ordercore.Event, error) {
		return o.AddItem(order.AddItem{ProductID: "SKU-002", ProductName: "Gadget", Quantity: 3, UnitPriceCents: 500})
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := orders.Execute(ctx, active, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Submit(order.SubmitOrder{})
	}); err != nil {
		t.Fatalf("submit order: %v", err)
	}

	return store, completed, active
}

func TestCurrentOrdersTracksActiveOnly(t *testing.T) {
	store, completed, active := buildStore(t)

	view := views.NewCurrentOrders()
	p := projection.NewProcessor(store)
	p.Register(view)
	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	if _, ok := view.Get(completed); ok {
		t.Error("completed order should not appear in CurrentOrders")
	}
	summary, ok := view.Get(active)
	if !ok {
		t.Fatal("active order missing from CurrentOrders")
	}
	if summary.State != string(order.StateReserved) {
		t.Errorf("state = %q, want Reserved", summary.State)
	}
	if summary.TotalCents != 1500 {
		t.Errorf("total = %d, want 1500", summary.TotalCents)
	}
}

func TestOrderHistoryTracksTerminalOnly(t *testing.T) {
	store, completed, active := buildStore(t)

	view := views.NewOrderHistory()
	p := projection.NewProcessor(store)
	p.Register(view)
	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	if _, ok := view.Get(active); ok {
		t.Error("active order should not appear in OrderHistory")
	}
	summary, ok := view.Get(completed)
	if !ok {
		t.Fatal("completed order missing from OrderHistory")
	}
	if summary.TrackingNumber != "TRACK-1" {
		t.Errorf("tracking number = %q, want TRACK-1", summary.TrackingNumber)
	}
	if summary.TotalCents != 2000 {
		t.Errorf("total = %d, want 2000", summary.TotalCents)
	}
}

func TestCustomerOrdersAggregatesPerCustomer(t *testing.T) {
	store, _, _ := buildStore(t)

	view := views.NewCustomerOrders()
	p := projection.NewProcessor(store)
	p.Register(view)
	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	cust1, ok := view.Get("cust-1")
	if !ok {
		t.Fatal("cust-1 missing")
	}
	if cust1.CompletedOrders != 1 || cust1.ActiveOrders != 0 {
		t.Errorf("cust-1 = %+v, want 1 completed, 0 active", cust1)
	}
	if cust1.TotalSpentCents != 2000 {
		t.Errorf("cust-1 total spent = %d, want 2000", cust1.TotalSpentCents)
	}

	cust2, ok := view.Get("cust-2")
	if !ok {
		t.Fatal("cust-2 missing")
	}
	if cust2.ActiveOrders != 1 || cust2.CompletedOrders != 0 {
		t.Errorf("cust-2 = %+v, want 1 active, 0 completed", cust2)
	}
}

func TestInventoryDemandTracksQuantities(t *testing.T) {
	store, _, _ := buildStore(t)

	view := views.NewInventoryDemand()
	p := projection.NewProcessor(store)
	p.Register(view)
	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	sku1, ok := view.Get("SKU-001")
	if !ok {
		t.Fatal("SKU-001 missing")
	}
	if sku1.QuantityCompleted != 2 {
		t.Errorf("SKU-001 completed = %d, want 2", sku1.QuantityCompleted)
	}
	if sku1.TotalRevenueCents != 2000 {
		t.Errorf("SKU-001 revenue = %d, want 2000", sku1.TotalRevenueCents)
	}

	sku2, ok := view.Get("SKU-002")
	if !ok {
		t.Fatal("SKU-002 missing")
	}
	if sku2.QuantityReserved != 3 {
		t.Errorf("SKU-002 reserved = %d, want 3", sku2.QuantityReserved)
	}
}
