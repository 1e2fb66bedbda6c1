// Package memory implements ordercore.EventBus as an in-process fan-out:
// one buffered channel and one worker goroutine per subscriber, so
// subscribers can react to newly appended events without polling the
// store. No projection or saga code in this module subscribes to it.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ordercore "github.com/terraskye/ordercore"
)

type subscriber struct {
	name    string
	filter  func(ordercore.Envelope) bool
	handler ordercore.EventHandler
	events  chan ordercore.Envelope
	cancel  context.CancelFunc
}

type Bus struct {
	mu         sync.RWMutex
	subs       map[string]*subscriber
	closed     bool
	errs       chan error
	wg         sync.WaitGroup
	bufferSize int
}

// New constructs a bus whose per-subscriber channel holds bufferSize
// pending envelopes before Dispatch starts dropping them.
func New(bufferSize int) *Bus {
	return &Bus{
		subs:       make(map[string]*subscriber),
		errs:       make(chan error, 64),
		bufferSize: bufferSize,
	}
}

func (b *Bus) Subscribe(ctx context.Context, name string, filter func(ordercore.Envelope) bool, handler ordercore.EventHandler, opts ...ordercore.SubscriberOption) error {
	if filter == nil || handler == nil {
		return errors.New("filter and handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("eventbus is closed")
	}
	if _, exists := b.subs[name]; exists {
		return fmt.Errorf("handler with name %q already registered", name)
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	s := &subscriber{
		name:    name,
		filter:  filter,
		handler: handler,
		events:  make(chan ordercore.Envelope, b.bufferSize),
		cancel:  cancel,
	}
	b.subs[name] = s

	b.wg.Add(1)
	go b.runSubscriber(workerCtx, s)

	go func() {
		<-ctx.Done()
		b.removeSubscriber(name)
	}()

	return nil
}

func (b *Bus) runSubscriber(ctx context.Context, s *subscriber) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-s.events:
			if !ok {
				return
			}
			handlerCtx := ordercore.WithEnvelope(ctx, env)
			if err := s.handler.Handle(handlerCtx, env.Event); err != nil {
				if _, skipped := err.(ordercore.ErrSkippedEvent); skipped {
					continue
				}
				select {
				case b.errs <- fmt.Errorf("handler %q: %w", s.name, err):
				default:
				}
			}
		}
	}
}

func (b *Bus) removeSubscriber(name string) {
	b.mu.Lock()
	s, ok := b.subs[name]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subs, name)
	b.mu.Unlock()

	s.cancel()
	close(s.events)
}

func (b *Bus) Dispatch(env ordercore.Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, s := range b.subs {
		if s.filter(env) {
			select {
			case s.events <- env:
			default:
				// subscriber is backed up; durable log remains the source
				// of truth, so a dropped dispatch only delays catch-up.
			}
		}
	}
}

func (b *Bus) Errors() <-chan error { return b.errs }

func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	for name, s := range b.subs {
		s.cancel()
		close(s.events)
		delete(b.subs, name)
	}
	b.mu.Unlock()

	b.wg.Wait()
	close(b.errs)
	return nil
}
