package ordercore_test

import (
	"context"
	"errors"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

func TestQueryGatewayHandlerNotFound(t *testing.T) {
	bus := ordercore.NewQueryBus()
	gateway := ordercore.NewQueryGateway[getWidgetQuery, widgetView](bus)

	_, err := gateway.HandleQuery(context.Background(), getWidgetQuery{ID: "1"})
	if !errors.Is(err, ordercore.ErrHandlerNotFound) {
		t.Errorf("HandleQuery() error = %v, want ErrHandlerNotFound", err)
	}
}

func TestQueryGatewayReturnsHandlerError(t *testing.T) {
	bus := ordercore.NewQueryBus()
	wantErr := errors.New("lookup failed")
	ordercore.RegisterQueryHandler[getWidgetQuery, widgetView](bus, ordercore.NewQueryHandlerFunc(
		func(ctx context.Context, qry getWidgetQuery) (widgetView, error) {
			return widgetView{}, wantErr
		},
	))
	gateway := ordercore.NewQueryGateway[getWidgetQuery, widgetView](bus)

	_, err := gateway.HandleQuery(context.Background(), getWidgetQuery{ID: "1"})
	if !errors.Is(err, wantErr) {
		t.Errorf("HandleQuery() error = %v, want %v", err, wantErr)
	}
}
