package memory

import (
	"context"
	"sync"

	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
)

// EventRecorder captures published events for assertions in tests and acts
// as the publisher in local development
type EventRecorder struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

// NewEventRecorder creates an event recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records a single event
func (r *EventRecorder) Publish(ctx context.Context, event events.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// PublishBatch records multiple events
func (r *EventRecorder) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, batch...)
	return nil
}

// Events returns a snapshot of everything recorded so far
func (r *EventRecorder) Events() []events.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// ByType returns recorded events of one type
func (r *EventRecorder) ByType(eventType string) []events.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range r.events {
		if e.GetEventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.EventPublisher = (*EventRecorder)(nil)
