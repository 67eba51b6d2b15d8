// Package notifier dispatches user-facing safety and payment notifications
// onto the platform's notification topic. Downstream delivery workers fan
// the events out to push, SMS, and email channels.
package notifier

import (
	"context"

	"dira/pkg/kafka"
	"dira/pkg/logger"
)

// Event types carried on the notification topic.
const (
	EventSOSTriggered     = "emergency.sos_triggered"
	EventListingSuspended = "trust.listing_suspended"
	EventMessageFlagged   = "trust.message_flagged"
	EventDepositHeld      = "deposit.held"
	EventDepositCaptured  = "deposit.captured"
	EventDepositReleased  = "deposit.released"
)

// Dispatcher sends a notification event to a single recipient.
// Implementations must be safe for concurrent use.
type Dispatcher interface {
	Send(ctx context.Context, userID, event string, data map[string]any) error
}

// KafkaDispatcher publishes notification events keyed by recipient so each
// user's notifications stay ordered within a partition.
type KafkaDispatcher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaDispatcher(producer *kafka.Producer, source string, log *logger.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

type notification struct {
	UserID string         `json:"user_id"`
	Event  string         `json:"event"`
	Data   map[string]any `json:"data,omitempty"`
}

func (d *KafkaDispatcher) Send(ctx context.Context, userID, event string, data map[string]any) error {
	msg := kafka.NewMessage().
		WithKey(userID).
		WithValue(notification{
			UserID: userID,
			Event:  event,
			Data:   data,
		}).
		WithEventType(event).
		WithSource(d.source).
		WithSchemaVersion("1").
		Build()

	if err := d.producer.Publish(ctx, msg); err != nil {
		d.log.Error("Failed to publish notification", "user_id", userID, "event", event, "error", err)
		return err
	}

	return nil
}

// Close flushes and closes the underlying producer.
func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
