package service

import (
	"context"

	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/logger"
	pkgEvents "chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes every chat event to the audit log.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	audit      logger.ILogger
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	audit logger.ILogger,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		audit:      audit,
		logger:     logger,
	}
}

// Consume subscribes and processes messages in the background until ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	cs.logger.Info("AUDIT", "Audit consumer started", map[string]interface{}{"topic": cs.topicName})
	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	evt, err := pkgEvents.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("AUDIT", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite redelivery.
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"type":        evt.EventType(),
		"occurred_at": evt.Timestamp(),
		"data":        evt.Payload(),
	}
	if evt.EventType() == events.TypeChatTurnDegraded {
		cs.audit.Warn("AUDIT", "Chat turn degraded", details)
	} else {
		cs.audit.Info("AUDIT", evt.EventType(), details)
	}
	msg.Ack()
}
