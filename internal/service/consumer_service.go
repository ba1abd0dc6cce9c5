package service

import (
	"context"

	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder ships events out of the process. *nats.Publisher satisfies it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	auditLog   logger.ILogger
	forwarder  EventForwarder
}

// NewConsumerService wires the audit consumer. forwarder may be nil when no
// external bus is configured.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	auditLog logger.ILogger,
	forwarder EventForwarder,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		auditLog:   auditLog,
		forwarder:  forwarder,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Ack always: events are informational and redelivery would only duplicate the audit line
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.auditLog.Error("EventConsumer", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	cs.auditLog.Info("EventConsumer", event.EventType(), map[string]interface{}{
		"message_id":  msg.UUID,
		"occurred_at": event.Timestamp(),
		"data":        event.Payload(),
	})

	if cs.forwarder == nil {
		return
	}
	if err := cs.forwarder.Publish(ctx, event); err != nil {
		cs.auditLog.Warn("EventConsumer", "Failed to forward event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
