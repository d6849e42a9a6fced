package messaging

import (
	"context"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
)

// CompositePublisher fans one event out to several publishers, typically the
// external bus plus the persistent audit log. Individual sink failures are
// logged and do not fail the publish; events are best effort after commit.
type CompositePublisher struct {
	sinks  []ports.EventPublisher
	logger *zap.Logger
}

// NewCompositePublisher creates a fan-out publisher
func NewCompositePublisher(logger *zap.Logger, sinks ...ports.EventPublisher) *CompositePublisher {
	return &CompositePublisher{sinks: sinks, logger: logger}
}

// Publish sends a single event to every sink
func (p *CompositePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.Warn("event sink failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// PublishBatch sends multiple events to every sink
func (p *CompositePublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, sink := range p.sinks {
		if err := sink.PublishBatch(ctx, domainEvents); err != nil {
			p.logger.Warn("event sink failed",
				zap.Int("eventCount", len(domainEvents)),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ ports.EventPublisher = (*CompositePublisher)(nil)
