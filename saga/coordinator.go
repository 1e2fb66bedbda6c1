package saga

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"

	ordercore "github.com/terraskye/ordercore"
	"github.com/terraskye/ordercore/idempotency"
	"github.com/terraskye/ordercore/order"
	orderotel "github.com/terraskye/ordercore/otel"
)

// stepOrder is the forward sequence of the OrderFulfillmentSaga. The
// coordinator never encodes reverse order separately: compensation
// iterates SagaInstance.CompletedSteps() backwards (§4.F, §9 "represented
// data-structurally").
var stepOrder = []string{StepReserveInventory, StepProcessPayment, StepCreateShipment}

// stepFn invokes the forward action of one step and returns the result
// fields that belong on StepCompleted's payload.
type stepFn func(ctx context.Context, agg *SagaInstance, idempotencyKey string) (map[string]string, error)

// compensateFn invokes the inverse action of one already-completed step.
// create_shipment has none: it is the workflow's pivot point.
type compensateFn func(ctx context.Context, agg *SagaInstance, idempotencyKey string) error

// orderExecutor is the narrow surface of ordercore.CommandHandler[*order.Order]
// the coordinator needs to apply ConfirmPayment/CompleteOrder/CancelOrder.
// It matches otel.Executor/logging.Executor structurally, so a caller can
// pass a *ordercore.CommandHandler[*order.Order] wrapped in either or both
// of those decorators straight into NewCoordinator.
type orderExecutor interface {
	Execute(ctx context.Context, id ordercore.AggregateId, commandFn func(agg *order.Order) ([]ordercore.Event, error)) (*order.Order, error)
}

// Coordinator orchestrates OrderFulfillmentSaga runs: starting them,
// driving each step with a bounded retry budget, compensating in reverse
// order on permanent failure, and resuming crashed runs on Recover.
type Coordinator struct {
	sagas  *ordercore.CommandHandler[*SagaInstance]
	orders orderExecutor
	store  ordercore.EventStore
	logger *logrus.Entry

	inventory InventoryService
	payment   PaymentService
	shipping  ShippingService

	steps        map[string]stepFn
	compensators map[string]compensateFn
}

// NewCoordinator wires a Coordinator around the given event store and
// external service collaborators. orders is the same command handler the
// HTTP layer (out of scope) would use to mutate Order aggregates, typically
// *ordercore.CommandHandler[*order.Order] wrapped with
// otel.WithCommandTelemetry/logging.WithCommandLogging; the coordinator
// uses it only to issue ConfirmPayment/CompleteOrder/CancelOrder once a
// saga reaches a terminal state.
func NewCoordinator(store ordercore.EventStore, orders orderExecutor, inventory InventoryService, payment PaymentService, shipping ShippingService, logger *logrus.Entry) *Coordinator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Coordinator{
		sagas:     ordercore.NewCommandHandler(store, "saga", New),
		orders:    orders,
		store:     store,
		logger:    logger,
		inventory: inventory,
		payment:   payment,
		shipping:  shipping,
	}
	c.steps = map[string]stepFn{
		StepReserveInventory: func(ctx context.Context, agg *SagaInstance, key string) (map[string]string, error) {
			id, err := inventory.Reserve(ctx, agg.OrderID(), agg.Items(), key)
			if err != nil {
				return nil, err
			}
			return map[string]string{"reservation_id": id}, nil
		},
		StepProcessPayment: func(ctx context.Context, agg *SagaInstance, key string) (map[string]string, error) {
			id, err := payment.Charge(ctx, agg.OrderID(), agg.AmountCents(), key)
			if err != nil {
				return nil, err
			}
			return map[string]string{"payment_id": id}, nil
		},
		StepCreateShipment: func(ctx context.Context, agg *SagaInstance, key string) (map[string]string, error) {
			tracking, err := shipping.Create(ctx, agg.OrderID(), agg.Address(), key)
			if err != nil {
				return nil, err
			}
			return map[string]string{"tracking_number": tracking}, nil
		},
	}
	c.compensators = map[string]compensateFn{
		StepReserveInventory: func(ctx context.Context, agg *SagaInstance, key string) error {
			return inventory.Release(ctx, agg.ReservationID(), key)
		},
		StepProcessPayment: func(ctx context.Context, agg *SagaInstance, key string) error {
			return payment.Refund(ctx, agg.PaymentID(), key)
		},
	}
	return c
}

// stepBackoff bounds a forward step's transient-failure retries to 3
// retries (4 attempts in all) with exponential backoff, per §4.F's
// "retry budget 3".
func stepBackoff(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
}

// compensationBackoff retries until it succeeds or ctx is cancelled, per
// §4.F's "retry indefinitely with backoff (compensation must eventually
// succeed)". There is no attempt cap: a cancelled context is the only way
// this returns an error.
func compensationBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	return backoff.WithContext(b, ctx)
}

// Start appends SagaStarted for a fresh saga aggregate and immediately
// drives it to completion or compensation, returning the saga's id
// regardless of how the run ultimately concludes.
func (c *Coordinator) Start(ctx context.Context, orderID ordercore.AggregateId, items []Item, amountCents int64, address string) (ordercore.AggregateId, error) {
	sagaID := ordercore.NewAggregateId()
	c.logger.WithFields(logrus.Fields{"saga_id": sagaID.String(), "order_id": orderID.String()}).Info("saga starting")

	if _, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
		return []ordercore.Event{SagaStarted{SagaType: "OrderFulfillmentSaga", OrderID: orderID, Items: items, AmountCents: amountCents, Address: address}}, nil
	}); err != nil {
		return sagaID, err
	}

	return sagaID, c.run(ctx, sagaID)
}

// run drives sagaID forward from wherever it left off: steps already in
// CompletedSteps are skipped, so resuming after a crash never re-invokes
// an already-succeeded step, and a saga that already recorded StepFailed
// or CompensationStarted resumes compensation instead. It is the single
// entry point used by both Start and Recover.
func (c *Coordinator) run(ctx context.Context, sagaID ordercore.AggregateId) error {
	agg, err := c.sagas.Load(ctx, sagaID)
	if err != nil {
		return err
	}
	if agg.IsTerminal() {
		return nil
	}
	if agg.Phase() == PhaseCompensating || agg.FailureReason() != "" {
		return c.compensate(ctx, sagaID, agg.FailureReason())
	}

	for _, step := range stepOrder {
		if agg.hasCompleted(step) {
			continue
		}

		next, stepErr := c.executeStep(ctx, sagaID, step)
		if stepErr != nil {
			var failed *StepFailedError
			if errors.As(stepErr, &failed) {
				return c.compensate(ctx, sagaID, failed.Reason)
			}
			return stepErr
		}
		agg = next
	}

	if _, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
		return []ordercore.Event{SagaCompleted{}}, nil
	}); err != nil {
		return err
	}
	orderotel.SagaOutcomes.Add(ctx, 1)
	c.logger.WithField("saga_id", sagaID.String()).Info("saga completed")

	return c.applyOrderEffects(ctx, sagaID)
}

// executeStep appends StepStarted, runs the step's forward action with
// its retry budget, and appends either StepCompleted or StepFailed. The
// idempotency key is derived once per (saga_id, step) and handed to the
// collaborator on every attempt, including ones driven by crash recovery.
func (c *Coordinator) executeStep(ctx context.Context, sagaID ordercore.AggregateId, step string) (*SagaInstance, error) {
	agg, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
		return []ordercore.Event{StepStarted{Step: step}}, nil
	})
	if err != nil {
		return nil, err
	}

	key := idempotency.Key(sagaID.String(), step)
	fn := c.steps[step]

	var resultFields map[string]string
	var permanentErr error
	retryErr := backoff.Retry(func() error {
		fields, err := fn(ctx, agg, key)
		if err == nil {
			resultFields = fields
			return nil
		}
		var transient *TransientError
		if errors.As(err, &transient) {
			return err
		}
		permanentErr = err
		return backoff.Permanent(err)
	}, stepBackoff(ctx))

	orderotel.SagaStepsExecuted.Add(ctx, 1, metric.WithAttributes(orderotel.AttrStepName.String(step)))

	if retryErr != nil {
		reason := retryErr.Error()
		if permanentErr != nil {
			reason = permanentErr.Error()
		}
		c.logger.WithFields(logrus.Fields{"saga_id": sagaID.String(), "step": step}).WithError(retryErr).Warn("saga step failed")
		if _, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
			return []ordercore.Event{StepFailed{Step: step, Reason: reason}}, nil
		}); err != nil {
			return nil, err
		}
		return nil, &StepFailedError{Step: step, Reason: reason}
	}

	return c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
		return []ordercore.Event{StepCompleted{Step: step, ResultFields: resultFields}}, nil
	})
}

// compensate rolls back every already-completed step in reverse order,
// then appends SagaCompensated, or SagaFailed if a compensation could not
// complete before ctx was cancelled.
func (c *Coordinator) compensate(ctx context.Context, sagaID ordercore.AggregateId, reason string) error {
	agg, err := c.sagas.Load(ctx, sagaID)
	if err != nil {
		return err
	}

	completed := agg.CompletedSteps()
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if agg.compensated[step] {
			continue
		}
		compFn, ok := c.compensators[step]
		if !ok {
			continue
		}

		agg, err = c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
			return []ordercore.Event{CompensationStarted{Step: step}}, nil
		})
		if err != nil {
			return err
		}

		key := idempotency.Key(sagaID.String(), step)
		retryErr := backoff.Retry(func() error {
			return compFn(ctx, agg, key)
		}, compensationBackoff(ctx))

		if retryErr != nil {
			c.logger.WithFields(logrus.Fields{"saga_id": sagaID.String(), "step": step}).WithError(retryErr).Error("saga compensation could not complete")
			if _, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
				return []ordercore.Event{SagaFailed{Reason: "compensation of " + step + " failed: " + retryErr.Error()}}, nil
			}); err != nil {
				return err
			}
			orderotel.SagaOutcomes.Add(ctx, 1)
			return c.applyOrderEffects(ctx, sagaID)
		}

		orderotel.SagaCompensations.Add(ctx, 1, metric.WithAttributes(orderotel.AttrStepName.String(step)))
		agg, err = c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
			return []ordercore.Event{CompensationCompleted{Step: step}}, nil
		})
		if err != nil {
			return err
		}
	}

	if _, err := c.sagas.Execute(ctx, sagaID, func(agg *SagaInstance) ([]ordercore.Event, error) {
		return []ordercore.Event{SagaCompensated{}}, nil
	}); err != nil {
		return err
	}
	orderotel.SagaOutcomes.Add(ctx, 1)
	c.logger.WithFields(logrus.Fields{"saga_id": sagaID.String(), "reason": reason}).Info("saga compensated")

	return c.applyOrderEffects(ctx, sagaID)
}

// applyOrderEffects issues the Order commands described in §4.F's
// "Effect on the Order aggregate": ConfirmPayment+CompleteOrder on
// success, CancelOrder on any rollback outcome. The saga and the order
// are separate aggregates appended in separate calls; the saga owns the
// sequencing (§9 "No cross-aggregate transactions").
func (c *Coordinator) applyOrderEffects(ctx context.Context, sagaID ordercore.AggregateId) error {
	agg, err := c.sagas.Load(ctx, sagaID)
	if err != nil {
		return err
	}

	switch agg.Phase() {
	case PhaseCompleted:
		if _, err := c.orders.Execute(ctx, agg.OrderID(), func(o *order.Order) ([]ordercore.Event, error) {
			return o.ConfirmPayment(order.ConfirmPayment{PaymentRef: agg.PaymentID()})
		}); err != nil {
			return err
		}
		_, err := c.orders.Execute(ctx, agg.OrderID(), func(o *order.Order) ([]ordercore.Event, error) {
			return o.Complete(order.CompleteOrder{TrackingNumber: agg.TrackingNumber()})
		})
		return err
	case PhaseCompensated, PhaseFailed:
		reason := agg.FailureReason()
		_, err := c.orders.Execute(ctx, agg.OrderID(), func(o *order.Order) ([]ordercore.Event, error) {
			return o.Cancel(order.CancelOrder{Reason: reason})
		})
		return err
	default:
		return nil
	}
}

// Recover scans every saga that has started but not yet reached a
// terminal state and resumes each one from its last completed marker.
// Because every step and compensation is idempotent on the key derived
// from (saga_id, step_name), resuming never re-charges a payment or
// re-reserves inventory that a prior process already completed (§4.F
// "Recovery").
func (c *Coordinator) Recover(ctx context.Context) error {
	started, err := c.store.GetEventsByType(ctx, "SagaStarted")
	if err != nil {
		return err
	}

	for _, env := range started {
		agg, err := c.sagas.Load(ctx, env.AggregateID)
		if err != nil {
			return err
		}
		if agg.IsTerminal() {
			continue
		}
		c.logger.WithField("saga_id", env.AggregateID.String()).Info("resuming saga after restart")
		if err := c.run(ctx, env.AggregateID); err != nil {
			c.logger.WithField("saga_id", env.AggregateID.String()).WithError(err).Error("saga recovery failed")
		}
	}
	return nil
}

// Status is the read view of a saga's progress, derived entirely from its
// event-sourced aggregate (§4.F "Query").
type Status struct {
	SagaID         ordercore.AggregateId
	State          Phase
	CompletedSteps []string
	ReservationID  string
	PaymentID      string
	TrackingNumber string
	FailureReason  string
}

// StatusOf loads sagaID and projects it into a Status view.
func (c *Coordinator) StatusOf(ctx context.Context, sagaID ordercore.AggregateId) (Status, error) {
	agg, err := c.sagas.Load(ctx, sagaID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		SagaID:         sagaID,
		State:          agg.Phase(),
		CompletedSteps: agg.CompletedSteps(),
		ReservationID:  agg.ReservationID(),
		PaymentID:      agg.PaymentID(),
		TrackingNumber: agg.TrackingNumber(),
		FailureReason:  agg.FailureReason(),
	}, nil
}
