package query_test

import (
	"context"
	"testing"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/eventstore/memory"
	"github.com/terraskye/ordercore/order"
	"github.com/terraskye/ordercore/projection"
	"github.com/terraskye/ordercore/projection/views"
	"github.com/terraskye/ordercore/query"
)

func TestBusAnswersGetOrderByID(t *testing.T) {
	store := memory.New()
	orders := ordercore.NewCommandHandler(store, "order", order.New)
	ctx := context.Background()

	id := ordercore.NewAggregateId()
	if _, err := orders.Execute(ctx, id, func(o *order.Order) ([]ordercore.Event, error) {
		return o.Create(order.CreateOrder{OrderID: id, CustomerID: "cust-1"})
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := orders.Execute(ctx, id, func(o *order.Order) ([]ordercore.Event, error) {
		return o.AddItem(order.AddItem{ProductID: "SKU-001", ProductName: "Widget", Quantity: 1, UnitPriceCents: 500})
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	gw := &query.Gateway{
		Current:   views.NewCurrentOrders(),
		History:   views.NewOrderHistory(),
		Customers: views.NewCustomerOrders(),
		Inventory: views.NewInventoryDemand(),
	}
	p := projection.NewProcessor(store)
	p.Register(gw.Current)
	p.Register(gw.History)
	p.Register(gw.Customers)
	p.Register(gw.Inventory)
	if err := p.CatchUp(ctx, 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	bus := query.NewBus(gw)
	gateway := ordercore.NewQueryGateway[query.GetOrderByID, *query.OrderView](bus)

	result, err := gateway.HandleQuery(ctx, query.GetOrderByID{OrderID: id})
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if result.CustomerID != "cust-1" {
		t.Errorf("customer id = %q, want cust-1", result.CustomerID)
	}
	if result.TotalCents != 500 {
		t.Errorf("total = %d, want 500", result.TotalCents)
	}
}

func TestBusUnknownOrderNotFound(t *testing.T) {
	gw := &query.Gateway{
		Current:   views.NewCurrentOrders(),
		History:   views.NewOrderHistory(),
		Customers: views.NewCustomerOrders(),
		Inventory: views.NewInventoryDemand(),
	}
	bus := query.NewBus(gw)
	gateway := ordercore.NewQueryGateway[query.GetOrderByID, *query.OrderView](bus)

	_, err := gateway.HandleQuery(context.Background(), query.GetOrderByID{OrderID: ordercore.NewAggregateId()})
	if err == nil {
		t.Fatal("expected not-found error for unknown order")
	}
}
