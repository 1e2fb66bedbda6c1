package ordercore_test

import (
	"context"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

func TestRegisterAndLookupQueryHandler(t *testing.T) {
	bus := ordercore.NewQueryBus()
	ordercore.RegisterQueryHandler[getWidgetQuery, widgetView](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, qry getWidgetQuery) (widgetView, error) {
			return widgetView{Name: "widget-" + qry.ID}, nil
		},
	))

	gateway := ordercore.NewQueryGateway[getWidgetQuery, widgetView](bus)

	got, err := gateway.HandleQuery(context.Background(), getWidgetQuery{ID: "1"})
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if got.Name != "widget-1" {
		t.Errorf("got.Name = %q, want %q", got.Name, "widget-1")
	}
}

func TestQueryBusDistinguishesResultTypes(t *testing.T) {
	bus := ordercore.NewQueryBus()
	ordercore.RegisterQueryHandler[getWidgetQuery, widgetView](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, qry getWidgetQuery) (widgetView, error) {
			return widgetView{Name: "view"}, nil
		},
	))
	ordercore.RegisterQueryHandler[getWidgetQuery, string](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, qry getWidgetQuery) (string, error) {
			return "string-result", nil
		},
	))

	viewGateway := ordercore.NewQueryGateway[getWidgetQuery, widgetView](bus)
	stringGateway := ordercore.NewQueryGateway[getWidgetQuery, string](bus)

	view, err := viewGateway.HandleQuery(context.Background(), getWidgetQuery{ID: "1"})
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if view.Name != "view" {
		t.Errorf("view.Name = %q, want %q", view.Name, "view")
	}

	str, err := stringGateway.HandleQuery(context.Background(), getWidgetQuery{ID: "1"})
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if str != "string-result" {
		t.Errorf("str = %q, want %q", str, "string-result")
	}
}
