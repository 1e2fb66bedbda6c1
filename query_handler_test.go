package ordercore_test

import (
	"context"
	"errors"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

type getWidgetQuery struct{ ID string }

func (q getWidgetQuery) QueryType() string { return "GetWidget" }

type widgetView struct{ Name string }

func TestNewQueryHandlerFunc(t *testing.T) {
	handler := ordercore.NewQueryHandlerFunc(func(ctx context.Context, qry getWidgetQuery) (widgetView, error) {
		return widgetView{Name: "widget-" + qry.ID}, nil
	})

	got, err := handler.HandleQuery(context.Background(), getWidgetQuery{ID: "7"})
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if got.Name != "widget-7" {
		t.Errorf("got.Name = %q, want %q", got.Name, "widget-7")
	}
}

func TestNewQueryHandlerFuncPropagatesError(t *testing.T) {
	wantErr := errors.New("not found")
	handler := ordercore.NewQueryHandlerFunc(func(ctx context.Context, qry getWidgetQuery) (widgetView, error) {
		return widgetView{}, wantErr
	})

	_, err := handler.HandleQuery(context.Background(), getWidgetQuery{ID: "missing"})
	if !errors.Is(err, wantErr) {
		t.Errorf("HandleQuery() error = %v, want %v", err, wantErr)
	}
}
