package saga

import (
	"context"
	"fmt"
	"sync"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/idempotency"
)

// InventoryService is the external collaborator for step 1. Reserve's
// failure mode is split by the caller wrapping transient errors in
// Transient; anything else is permanent. Release is contracted to be
// idempotent and is retried indefinitely by the coordinator.
type InventoryService interface {
	Reserve(ctx context.Context, orderID ordercore.AggregateId, items []Item, idempotencyKey string) (reservationID string, err error)
	Release(ctx context.Context, reservationID string, idempotencyKey string) error
}

// PaymentService is the external collaborator for step 2.
type PaymentService interface {
	Charge(ctx context.Context, orderID ordercore.AggregateId, amountCents int64, idempotencyKey string) (paymentID string, err error)
	Refund(ctx context.Context, paymentID string, idempotencyKey string) error
}

// ShippingService is the external collaborator for step 3. It has no
// compensation: create_shipment is the workflow's pivot point.
type ShippingService interface {
	Create(ctx context.Context, orderID ordercore.AggregateId, address string, idempotencyKey string) (trackingNumber string, err error)
}

// InMemoryInventoryService is a reference implementation for tests and
// callers that have not yet wired a real inventory integration. It
// de-duplicates by idempotency key through an idempotency.Store and mints
// sequential, human-readable reservation ids.
type InMemoryInventoryService struct {
	mu        sync.Mutex
	dedup     idempotency.Store
	seq       int
	released  map[string]bool
	FailNext  error // if set, the next Reserve call returns this error instead of succeeding.
}

// NewInMemoryInventoryService returns a service backed by store. A nil
// store defaults to a fresh idempotency.MemoryStore.
func NewInMemoryInventoryService(store idempotency.Store) *InMemoryInventoryService {
	if store == nil {
		store = idempotency.NewMemoryStore()
	}
	return &InMemoryInventoryService{dedup: store, released: make(map[string]bool)}
}

func (s *InMemoryInventoryService) Reserve(ctx context.Context, orderID ordercore.AggregateId, items []Item, idempotencyKey string) (string, error) {
	if cached, ok, err := s.dedup.Get(ctx, idempotencyKey); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	s.mu.Lock()
	failure := s.FailNext
	s.FailNext = nil
	s.seq++
	id := fmt.Sprintf("RES-%04d", s.seq)
	s.mu.Unlock()

	if failure != nil {
		return "", failure
	}

	if err := s.dedup.Put(ctx, idempotencyKey, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *InMemoryInventoryService) Release(ctx context.Context, reservationID string, idempotencyKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released[reservationID] = true
	return nil
}

// Released reports whether reservationID was released, for test assertions.
func (s *InMemoryInventoryService) Released(reservationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released[reservationID]
}

// InMemoryPaymentService is a reference implementation mirroring
// InMemoryInventoryService's idempotency and sequential-id approach.
type InMemoryPaymentService struct {
	mu       sync.Mutex
	dedup    idempotency.Store
	seq      int
	charges  int
	refunded map[string]bool
	FailNext error
}

func NewInMemoryPaymentService(store idempotency.Store) *InMemoryPaymentService {
	if store == nil {
		store = idempotency.NewMemoryStore()
	}
	return &InMemoryPaymentService{dedup: store, refunded: make(map[string]bool)}
}

// Charges returns how many times Charge actually debited (as opposed to
// returning a cached result), for test assertions about idempotency.
func (s *InMemoryPaymentService) Charges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charges
}

func (s *InMemoryPaymentService) Charge(ctx context.Context, orderID ordercore.AggregateId, amountCents int64, idempotencyKey string) (string, error) {
	if cached, ok, err := s.dedup.Get(ctx, idempotencyKey); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	s.mu.Lock()
	failure := s.FailNext
	s.FailNext = nil
	s.seq++
	if failure == nil {
		s.charges++
	}
	id := fmt.Sprintf("PAY-%04d", s.seq)
	s.mu.Unlock()

	if failure != nil {
		return "", failure
	}

	if err := s.dedup.Put(ctx, idempotencyKey, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *InMemoryPaymentService) Refund(ctx context.Context, paymentID string, idempotencyKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunded[paymentID] = true
	return nil
}

// Refunded reports whether paymentID was refunded, for test assertions.
func (s *InMemoryPaymentService) Refunded(paymentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refunded[paymentID]
}

// InMemoryShippingService is a reference implementation with no
// compensation, matching create_shipment's role as the pivot point.
type InMemoryShippingService struct {
	mu       sync.Mutex
	dedup    idempotency.Store
	seq      int
	FailNext error
}

func NewInMemoryShippingService(store idempotency.Store) *InMemoryShippingService {
	if store == nil {
		store = idempotency.NewMemoryStore()
	}
	return &InMemoryShippingService{dedup: store}
}

func (s *InMemoryShippingService) Create(ctx context.Context, orderID ordercore.AggregateId, address string, idempotencyKey string) (string, error) {
	key := idempotencyKey
	if cached, ok, err := s.dedup.Get(ctx, key); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	s.mu.Lock()
	failure := s.FailNext
	s.FailNext = nil
	s.seq++
	tracking := fmt.Sprintf("TRACK-%04d", s.seq)
	s.mu.Unlock()

	if failure != nil {
		return "", failure
	}

	if err := s.dedup.Put(ctx, key, tracking); err != nil {
		return "", err
	}
	return tracking, nil
}
