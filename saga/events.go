package saga

import (
	ordercore "github.com/terraskye/ordercore"
)

// Step names, shared between events and the coordinator's step table.
const (
	StepReserveInventory = "reserve_inventory"
	StepProcessPayment   = "process_payment"
	StepCreateShipment   = "create_shipment"
)

func init() {
	ordercore.RegisterEventByType(func() ordercore.Event { return &SagaStarted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &StepStarted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &StepCompleted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &StepFailed{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &CompensationStarted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &CompensationCompleted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &SagaCompleted{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &SagaCompensated{} })
	ordercore.RegisterEventByType(func() ordercore.Event { return &SagaFailed{} })
}

// SagaStarted is the first event of every saga stream: it captures the
// full context the workflow needs to run without consulting the order
// aggregate again.
type SagaStarted struct {
	SagaType    string
	OrderID     ordercore.AggregateId
	Items       []Item
	AmountCents int64
	Address     string
}

func (SagaStarted) EventType() string { return "SagaStarted" }

// StepStarted records that step is about to be attempted.
type StepStarted struct {
	Step string
}

func (StepStarted) EventType() string { return "StepStarted" }

// StepCompleted records a successful step and the fields of its result
// the aggregate needs to remember (e.g. "reservation_id": "RES-0001").
type StepCompleted struct {
	Step         string
	ResultFields map[string]string
}

func (StepCompleted) EventType() string { return "StepCompleted" }

// StepFailed records a step's permanent failure. It does not itself
// change phase beyond recording the reason. CompensationStarted/
// CompensationCompleted follow for each completed step that has a
// compensating action, then SagaCompensated (also when there is nothing
// to compensate), or SagaFailed if a compensation cannot complete.
type StepFailed struct {
	Step   string
	Reason string
}

func (StepFailed) EventType() string { return "StepFailed" }

// CompensationStarted records that step's compensating action is about to
// be invoked, during reverse-order rollback.
type CompensationStarted struct {
	Step string
}

func (CompensationStarted) EventType() string { return "CompensationStarted" }

// CompensationCompleted records that step's compensating action
// succeeded.
type CompensationCompleted struct {
	Step string
}

func (CompensationCompleted) EventType() string { return "CompensationCompleted" }

// SagaCompleted is the terminal success event: every step ran.
type SagaCompleted struct{}

func (SagaCompleted) EventType() string { return "SagaCompleted" }

// SagaCompensated is the terminal rollback event: a step failed but every
// previously completed step was compensated cleanly.
type SagaCompensated struct{}

func (SagaCompensated) EventType() string { return "SagaCompensated" }

// SagaFailed is the terminal failure event: compensation itself could not
// complete and an operator must intervene.
type SagaFailed struct {
	Reason string
}

func (SagaFailed) EventType() string { return "SagaFailed" }
