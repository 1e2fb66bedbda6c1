// Package saga implements the SagaInstance aggregate and the
// OrderFulfillmentSaga workflow that orchestrates it: reserve inventory,
// process payment, create a shipment, compensating already-completed
// steps in reverse order on permanent failure. The saga is itself
// event-sourced through the same ordercore.EventStore the order aggregate
// uses, so a crash leaves nothing to recover but a replay (§4.F).
package saga

import (
	"encoding/json"

	ordercore "github.com/terraskye/ordercore"
)

// Phase is the coarse-grained position of a saga in its own lifecycle.
// CurrentStep disambiguates RunningStep/Compensating, which both need to
// know which step they're talking about; it is empty in StepCompleted.
type Phase string

const (
	PhaseStarted        Phase = "Started"
	PhaseRunningStep    Phase = "RunningStep"
	PhaseStepCompleted  Phase = "StepCompleted"
	PhaseCompensating   Phase = "Compensating"
	PhaseCompleted      Phase = "Completed"
	PhaseCompensated    Phase = "Compensated"
	PhaseFailed         Phase = "Failed"
)

// Item is the minimal line-item shape the inventory step needs; it is
// intentionally decoupled from order.Item so saga event payloads don't
// carry pricing data that isn't theirs to own.
type Item struct {
	ProductID string
	Quantity  int
}

// SagaInstance is the event-sourced aggregate backing one run of the
// OrderFulfillmentSaga. Zero value is a valid "not yet started" instance.
type SagaInstance struct {
	id          ordercore.AggregateId
	sagaType    string
	orderID     ordercore.AggregateId
	items       []Item
	amountCents int64
	address     string

	phase          Phase
	currentStep    string
	completedSteps []string
	compensated    map[string]bool

	reservationID  string
	paymentID      string
	trackingNumber string
	failureReason  string

	version ordercore.Version
}

// New returns a zero-value SagaInstance identified by id, ready for replay.
func New(id ordercore.AggregateId) *SagaInstance {
	return &SagaInstance{id: id, compensated: make(map[string]bool)}
}

func (s *SagaInstance) AggregateID() ordercore.AggregateId  { return s.id }
func (s *SagaInstance) AggregateType() string               { return "saga" }
func (s *SagaInstance) AggregateVersion() ordercore.Version { return s.version }

func (s *SagaInstance) SagaType() string           { return s.sagaType }
func (s *SagaInstance) OrderID() ordercore.AggregateId { return s.orderID }
func (s *SagaInstance) Items() []Item              { return append([]Item(nil), s.items...) }
func (s *SagaInstance) AmountCents() int64         { return s.amountCents }
func (s *SagaInstance) Address() string            { return s.address }

func (s *SagaInstance) Phase() Phase          { return s.phase }
func (s *SagaInstance) CurrentStep() string   { return s.currentStep }
func (s *SagaInstance) CompletedSteps() []string {
	return append([]string(nil), s.completedSteps...)
}
func (s *SagaInstance) ReservationID() string  { return s.reservationID }
func (s *SagaInstance) PaymentID() string      { return s.paymentID }
func (s *SagaInstance) TrackingNumber() string { return s.trackingNumber }
func (s *SagaInstance) FailureReason() string  { return s.failureReason }

// IsTerminal reports whether the saga has reached Completed, Compensated,
// or Failed and will never emit another event.
func (s *SagaInstance) IsTerminal() bool {
	switch s.phase {
	case PhaseCompleted, PhaseCompensated, PhaseFailed:
		return true
	default:
		return false
	}
}

// hasCompleted reports whether step is in the completed-steps list.
func (s *SagaInstance) hasCompleted(step string) bool {
	for _, c := range s.completedSteps {
		if c == step {
			return true
		}
	}
	return false
}

// Apply folds a single historical SagaEvent into the aggregate. It is pure.
func (s *SagaInstance) Apply(event ordercore.Event) {
	switch e := event.(type) {
	case SagaStarted:
		s.sagaType = e.SagaType
		s.orderID = e.OrderID
		s.items = make([]Item, len(e.Items))
		copy(s.items, e.Items)
		s.amountCents = e.AmountCents
		s.address = e.Address
		s.phase = PhaseStarted
		s.compensated = make(map[string]bool)
	case StepStarted:
		s.phase = PhaseRunningStep
		s.currentStep = e.Step
	case StepCompleted:
		s.phase = PhaseStepCompleted
		s.currentStep = ""
		s.completedSteps = append(s.completedSteps, e.Step)
		switch e.Step {
		case StepReserveInventory:
			s.reservationID = e.ResultFields["reservation_id"]
		case StepProcessPayment:
			s.paymentID = e.ResultFields["payment_id"]
		case StepCreateShipment:
			s.trackingNumber = e.ResultFields["tracking_number"]
		}
	case StepFailed:
		s.failureReason = e.Reason
	case CompensationStarted:
		s.phase = PhaseCompensating
		s.currentStep = e.Step
	case CompensationCompleted:
		s.compensated[e.Step] = true
	case SagaCompleted:
		s.phase = PhaseCompleted
		s.currentStep = ""
	case SagaCompensated:
		s.phase = PhaseCompensated
		s.currentStep = ""
	case SagaFailed:
		s.phase = PhaseFailed
		s.currentStep = ""
		s.failureReason = e.Reason
	}
	s.version = s.version.Next()
}

// snapshotState is what SnapshotState/RestoreSnapshot round-trip.
type snapshotState struct {
	SagaType       string          `json:"saga_type"`
	OrderID        ordercore.AggregateId `json:"order_id"`
	Items          []Item          `json:"items"`
	AmountCents    int64           `json:"amount_cents"`
	Address        string          `json:"address"`
	Phase          Phase           `json:"phase"`
	CurrentStep    string          `json:"current_step"`
	CompletedSteps []string        `json:"completed_steps"`
	Compensated    map[string]bool `json:"compensated"`
	ReservationID  string          `json:"reservation_id"`
	PaymentID      string          `json:"payment_id"`
	TrackingNumber string          `json:"tracking_number"`
	FailureReason  string          `json:"failure_reason"`
}

// SnapshotState implements ordercore.SnapshotAggregate.
func (s *SagaInstance) SnapshotState() ([]byte, error) {
	return json.Marshal(snapshotState{
		SagaType: s.sagaType, OrderID: s.orderID, Items: s.items,
		AmountCents: s.amountCents, Address: s.address,
		Phase: s.phase, CurrentStep: s.currentStep,
		CompletedSteps: s.completedSteps, Compensated: s.compensated,
		ReservationID: s.reservationID, PaymentID: s.paymentID,
		TrackingNumber: s.trackingNumber, FailureReason: s.failureReason,
	})
}

// RestoreSnapshot implements ordercore.SnapshotAggregate.
func (s *SagaInstance) RestoreSnapshot(version ordercore.Version, data []byte) error {
	var st snapshotState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.sagaType, s.orderID, s.items = st.SagaType, st.OrderID, st.Items
	s.amountCents, s.address = st.AmountCents, st.Address
	s.phase, s.currentStep = st.Phase, st.CurrentStep
	s.completedSteps = st.CompletedSteps
	s.compensated = st.Compensated
	if s.compensated == nil {
		s.compensated = make(map[string]bool)
	}
	s.reservationID, s.paymentID = st.ReservationID, st.PaymentID
	s.trackingNumber, s.failureReason = st.TrackingNumber, st.FailureReason
	s.version = version
	return nil
}
