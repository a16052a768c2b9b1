package events_test

import (
	"testing"

	"github.com/infinite-realms/combat-engine/internal/events"
	"github.com/stretchr/testify/assert"
)

type recordingSubscriber struct {
	id       string
	priority int
	log      *[]string
}

func (s *recordingSubscriber) HandleEvent(event events.Event) {
	*s.log = append(*s.log, s.id+":"+string(event.Type))
}

func (s *recordingSubscriber) ID() string    { return s.id }
func (s *recordingSubscriber) Priority() int { return s.priority }

type panickySubscriber struct{}

func (s *panickySubscriber) HandleEvent(events.Event) { panic("boom") }
func (s *panickySubscriber) ID() string               { return "panicky" }
func (s *panickySubscriber) Priority() int            { return 0 }

func TestBus_DeliversInPriorityOrder(t *testing.T) {
	bus := events.NewBus()
	var delivered []string

	bus.Subscribe(&recordingSubscriber{id: "second", priority: 2, log: &delivered})
	bus.Subscribe(&recordingSubscriber{id: "first", priority: 1, log: &delivered})

	bus.Emit(events.Event{Type: events.DamageApplied})

	assert.Equal(t, []string{"first:damage.applied", "second:damage.applied"}, delivered)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	var delivered []string

	bus.Subscribe(&recordingSubscriber{id: "keep", priority: 1, log: &delivered})
	bus.Subscribe(&recordingSubscriber{id: "drop", priority: 2, log: &delivered})
	bus.Unsubscribe("drop")

	bus.Emit(events.Event{Type: events.TurnAdvanced})

	assert.Equal(t, []string{"keep:turn.advanced"}, delivered)
}

func TestBus_PanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	bus := events.NewBus()
	var delivered []string

	bus.Subscribe(&panickySubscriber{})
	bus.Subscribe(&recordingSubscriber{id: "after", priority: 1, log: &delivered})

	bus.Emit(events.Event{Type: events.EncounterStarted})

	assert.Equal(t, []string{"after:encounter.started"}, delivered)
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := events.NewBus()
	assert.NotPanics(t, func() {
		bus.Emit(events.Event{Type: events.EncounterCreated})
	})
}
