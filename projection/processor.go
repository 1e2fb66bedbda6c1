// Package projection fans out the event store's global stream to a
// registered set of read-model projections (4.E). It does not define any
// concrete read model itself — see projection/views for those.
package projection

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	ordercore "github.com/terraskye/ordercore"
)

// Projection is a single named read-model updater driven by the event
// log. Position is opaque to the Processor: each projection tracks its
// own cursor so CatchUp can tell which projections are already caught up
// to a given point and skip redelivering events to them.
type Projection interface {
	// Name identifies the projection for logging and metrics.
	Name() string

	// Handle applies one envelope to the projection's read-model state.
	// Handle is never called concurrently with itself for the same
	// projection instance.
	Handle(ctx context.Context, env ordercore.Envelope) error

	// Position reports how many events of the global stream this
	// projection has applied so far.
	Position() uint64

	// Reset discards all read-model state and resets Position to zero,
	// in preparation for a full replay.
	Reset()
}

// Processor delivers events from an EventStore to every registered
// Projection, per 4.E's catch-up / deliver-one / rebuild operations.
type Processor struct {
	mu          sync.Mutex
	store       ordercore.EventStore
	projections []Projection
}

// NewProcessor builds a Processor reading from store.
func NewProcessor(store ordercore.EventStore) *Processor {
	return &Processor{store: store}
}

// Register adds proj to the processor. Order matters only for
// DeliverOne, which forwards events to projections in registration
// order.
func (p *Processor) Register(proj Projection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projections = append(p.projections, proj)
}

// Count returns the number of registered projections.
func (p *Processor) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.projections)
}

func (p *Processor) snapshot() []Projection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Projection(nil), p.projections...)
}

// CatchUp streams every event in the store's global order starting at
// fromSequence and delivers it to every registered projection that has
// not already processed it. Each event is fanned out to all projections
// concurrently (an errgroup per event, since projections are
// independent of one another), but the stream is still walked one event
// at a time so a single projection never sees two events out of order.
func (p *Processor) CatchUp(ctx context.Context, fromSequence uint64) error {
	projections := p.snapshot()

	it, err := p.store.StreamAll(ctx, fromSequence)
	if err != nil {
		return err
	}

	var processed uint64
	for it.Next(ctx) {
		env := it.Value()
		processed++
		pos := fromSequence + processed

		g, gctx := errgroup.WithContext(ctx)
		for _, proj := range projections {
			proj := proj
			if proj.Position() >= pos {
				continue
			}
			g.Go(func() error {
				return proj.Handle(gctx, env)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return it.Err()
}

// DeliverOne forwards a single freshly appended envelope to every
// registered projection, synchronously and in registration order. Used
// for in-process, real-time dispatch as opposed to historical CatchUp.
func (p *Processor) DeliverOne(ctx context.Context, env ordercore.Envelope) error {
	for _, proj := range p.snapshot() {
		if err := proj.Handle(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild discards every registered projection's state and replays the
// full stream from the beginning.
func (p *Processor) Rebuild(ctx context.Context) error {
	for _, proj := range p.snapshot() {
		proj.Reset()
	}
	return p.CatchUp(ctx, 0)
}
