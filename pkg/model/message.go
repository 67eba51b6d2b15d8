package model

import "time"

type ChatMessage struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Flagged    bool           `json:"flagged" bson:"flagged"`
	FlagReason string         `json:"flag_reason,omitempty" bson:"flag_reason,omitempty"`
	Analysis   map[string]any `json:"analysis,omitempty" bson:"analysis,omitempty"`
	FlaggedAt  *time.Time     `json:"flagged_at,omitempty" bson:"flagged_at,omitempty"`
}
