package projection_test

import (
	"context"
	"sync"
	"testing"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/eventstore/memory"
	"github.com/terraskye/ordercore/order"
	"github.com/terraskye/ordercore/projection"
)

// countingProjection is a minimal projection.Projection used to assert
// delivery counts and ordering without pulling in a real read model.
type countingProjection struct {
	mu       sync.Mutex
	count    int
	position uint64
	seen     []string
}

func (c *countingProjection) Name() string { return "counting" }

func (c *countingProjection) Handle(ctx context.Context, env ordercore.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.position++
	c.seen = append(c.seen, env.EventType)
	return nil
}

func (c *countingProjection) Position() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *countingProjection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	c.position = 0
	c.seen = nil
}

func seedOrder(t *testing.T, orders *ordercore.CommandHandler[*order.Order]) ordercore.AggregateId {
	t.Helper()
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
	return id
}

func TestCatchUpProcessesAllEvents(t *testing.T) {
	store := memory.New()
	orders := ordercore.NewCommandHandler(store, "order", order.New)
	seedOrder(t, orders)

	proj := &countingProjection{}
	p := projection.NewProcessor(store)
	p.Register(proj)

	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}
	if proj.count != 2 {
		t.Errorf("count = %d, want 2", proj.count)
	}
}

func TestCatchUpSkipsAlreadyProcessed(t *testing.T) {
	store := memory.New()
	orders := ordercore.NewCommandHandler(store, "order", order.New)
	seedOrder(t, orders)

	proj := &countingProjection{}
	p := projection.NewProcessor(store)
	p.Register(proj)

	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("first CatchUp() error = %v", err)
	}
	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("second CatchUp() error = %v", err)
	}
	if proj.count != 2 {
		t.Errorf("count after second catch-up = %d, want 2 (no reprocessing)", proj.count)
	}
}

func TestRebuildResetsAndReplays(t *testing.T) {
	store := memory.New()
	orders := ordercore.NewCommandHandler(store, "order", order.New)
	seedOrder(t, orders)

	proj := &countingProjection{}
	p := projection.NewProcessor(store)
	p.Register(proj)

	if err := p.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}
	if err := p.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if proj.count != 2 {
		t.Errorf("count after rebuild = %d, want 2", proj.count)
	}
}

func TestDeliverOneRespectsRegistrationOrder(t *testing.T) {
	store := memory.New()
	id := ordercore.NewAggregateId()

	var delivered []string
	firstProj := &orderTrackingProjection{name: "first", out: &delivered}
	secondProj := &orderTrackingProjection{name: "second", out: &delivered}

	p := projection.NewProcessor(store)
	p.Register(firstProj)
	p.Register(secondProj)

	env := ordercore.NewEnvelope(order.OrderCreated{OrderID: id, CustomerID: "c"}, id, "order", 1)
	if err := p.DeliverOne(context.Background(), env); err != nil {
		t.Fatalf("DeliverOne() error = %v", err)
	}
	if len(delivered) != 2 || delivered[0] != "first" || delivered[1] != "second" {
		t.Fatalf("delivered = %v, want [first second]", delivered)
	}
}

type orderTrackingProjection struct {
	name string
	out  *[]string
}

func (p *orderTrackingProjection) Name() string { return p.name }
func (p *orderTrackingProjection) Handle(ctx context.Context, env ordercore.Envelope) error {
	*p.out = append(*p.out, p.name)
	return nil
}
func (p *orderTrackingProjection) Position() uint64 { return uint64(len(*p.out)) }
func (p *orderTrackingProjection) Reset()            { *p.out = nil }
