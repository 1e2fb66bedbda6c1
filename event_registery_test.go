package ordercore_test

import (
	"fmt"
	"testing"

	ordercore "github.com/terraskye/ordercore"
)

type registeredStubEvent struct {
	Value string
}

func (e *registeredStubEvent) EventType() string { return "RegisteredStubEvent" }

func TestRegisterAndCreateByName(t *testing.T) {
	name := fmt.Sprintf("RegisteredStubEvent-%p", t)
	ordercore.RegisterEventByName(name, func() ordercore.Event { return &registeredStubEvent{} })

	ev, err := ordercore.NewEventByName(name)
	if err != nil {
		t.Fatalf("NewEventByName() error = %v", err)
	}
	if _, ok := ev.(*registeredStubEvent); !ok {
		t.Fatalf("NewEventByName() returned %T, want *registeredStubEvent", ev)
	}
}

func TestRegisterByTypeUsesEventType(t *testing.T) {
	ordercore.RegisterEventByType(func() ordercore.Event { return &byTypeStubEvent{} })

	ev, err := ordercore.NewEventByName("ByTypeStubEvent")
	if err != nil {
		t.Fatalf("NewEventByName() error = %v", err)
	}
	if _, ok := ev.(*byTypeStubEvent); !ok {
		t.Fatalf("NewEventByName() returned %T, want *byTypeStubEvent", ev)
	}
}

type byTypeStubEvent struct{}

func (e *byTypeStubEvent) EventType() string { return "ByTypeStubEvent" }

func TestNewEventByNameUnregistered(t *testing.T) {
	if _, err := ordercore.NewEventByName("DoesNotExist"); err == nil {
		t.Error("NewEventByName() error = nil, want error for unregistered name")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	name := fmt.Sprintf("DupStubEvent-%p", t)
	ordercore.RegisterEventByName(name, func() ordercore.Event { return &registeredStubEvent{} })

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic registering a duplicate event name")
		}
	}()
	ordercore.RegisterEventByName(name, func() ordercore.Event { return &registeredStubEvent{} })
}

func TestRegisterNilFactoryPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic registering a nil factory")
		}
	}()
	ordercore.RegisterEventByName(fmt.Sprintf("NilFactory-%p", t), nil)
}
