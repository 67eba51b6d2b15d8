package model

import "time"

type TicketPriority string

const (
	PriorityLow      TicketPriority = "LOW"
	PriorityHigh     TicketPriority = "HIGH"
	PriorityCritical TicketPriority = "CRITICAL"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type SupportTicket struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty"`
	Reference string         `json:"reference" bson:"reference"`
	UserID    string         `json:"user_id" bson:"user_id"`
	BookingID string         `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	ListingID string         `json:"listing_id,omitempty" bson:"listing_id,omitempty"`
	Priority  TicketPriority `json:"priority" bson:"priority"`
	Subject   string         `json:"subject" bson:"subject"`
	Body      string         `json:"body" bson:"body"`
	Status    TicketStatus   `json:"status" bson:"status"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}
