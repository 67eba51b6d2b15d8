package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dira/internal/trust/service"
	apperrors "dira/pkg/errors"
	"dira/pkg/kafka"
	kafka_config "dira/pkg/kafka/config"
	kafka_middleware "dira/pkg/kafka/middleware"
	"dira/pkg/logger"
)

// chatMessageEvent is the payload published by the chat service for every
// guest/host message. Only the fields the safety pipeline needs are decoded.
type chatMessageEvent struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

// ChatConsumer feeds incoming chat messages through the trust monitor.
type ChatConsumer struct {
	consumer *kafka.Consumer
	service  service.TrustService
	log      *logger.Logger
}

func NewChatConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, trustService service.TrustService, log *logger.Logger) (*ChatConsumer, error) {
	c := &ChatConsumer{
		service: trustService,
		log:     log,
	}

	consumer, err := kafka.NewConsumer(cfg, topic, groupID, dlqTopic, c.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat consumer: %w", err)
	}
	if cfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	}
	c.consumer = consumer

	return c, nil
}

func (c *ChatConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var event chatMessageEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return kafka.NewPermanentError("failed to decode chat message event", err)
	}

	if event.MessageID == "" {
		return kafka.NewPermanentError("chat message event missing message_id", nil)
	}

	result, err := c.service.MonitorMessage(ctx, event.MessageID, event.Text)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case apperrors.CodeNotFound, apperrors.CodeInvalidInput:
				// Message deleted or malformed: retrying will never succeed.
				return kafka.NewPermanentError("chat message cannot be monitored", err)
			case apperrors.CodeClassifier:
				return kafka.NewTransientError("message classification failed", err)
			}
		}
		return kafka.NewTransientError("failed to monitor chat message", err)
	}

	if result.Flagged {
		c.log.Warn("chat message flagged",
			"message_id", result.MessageID,
			"severity", result.Analysis.Severity,
		)
	}

	return nil
}

// Start blocks consuming messages until ctx is cancelled.
func (c *ChatConsumer) Start(ctx context.Context) error {
	c.log.Info("chat message consumer started")
	return c.consumer.Start(ctx)
}

func (c *ChatConsumer) Close() error {
	return c.consumer.Close()
}
