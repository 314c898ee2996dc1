package service

import (
	"context"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder is the external bus (NATS JetStream in production).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

// IPublisherService fans domain events out to the in-process bus and, when
// configured, to the external one. Publishing never fails the caller.
type IPublisherService interface {
	Publish(ctx context.Context, event events.Event)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	forwarder EventForwarder
	log       logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, forwarder EventForwarder, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		forwarder: forwarder,
		log:       log,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) {
	payload, err := events.Encode(event)
	if err != nil {
		p.log.Error("EVENTS", "Failed to marshal event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return
	}

	msg := message.NewMessage(event.EventID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}

	if p.forwarder == nil {
		return
	}
	if err := p.forwarder.Publish(context.WithoutCancel(ctx), event); err != nil {
		p.log.Warn("EVENTS", "Failed to forward event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}
