package events

import (
	"log"
	"sort"
	"sync"
)

// Subscriber receives state-change events for broadcast. Transports
// (WebSocket, SSE) live outside the engine; they plug in here.
type Subscriber interface {
	HandleEvent(event Event)
	ID() string
	Priority() int
}

// Bus fans state-change events out to subscribers. Emission happens after
// the state transition commits, so a slow or failing subscriber can never
// hold up or roll back combat.
type Bus struct {
	subscribers []Subscriber
	mu          sync.RWMutex
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber; delivery order follows priority
func (b *Bus) Subscribe(subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, subscriber)
	sort.SliceStable(b.subscribers, func(i, j int) bool {
		return b.subscribers[i].Priority() < b.subscribers[j].Priority()
	})
}

// Unsubscribe removes a subscriber by ID
func (b *Bus) Unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s.ID() == subscriberID {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Emit delivers the event to every subscriber in priority order. Panicking
// subscribers are logged and skipped; events are best-effort notifications,
// not part of the state transition.
func (b *Bus) Emit(event Event) {
	b.mu.RLock()
	subscribers := make([]Subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, subscriber := range subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("events: subscriber %s panicked handling %s: %v", subscriber.ID(), event.Type, r)
				}
			}()
			subscriber.HandleEvent(event)
		}()
	}
}
