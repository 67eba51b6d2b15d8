package model

import "time"

// AuditEntry is an append-only record of a moderation or safety event.
// Entries are never updated or deleted.
type AuditEntry struct {
	ID         string         `json:"id,omitempty" bson:"_id,omitempty"`
	Action     string         `json:"action" bson:"action"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	EntityID   string         `json:"entity_id" bson:"entity_id"`
	ActorID    string         `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Detail     map[string]any `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

const (
	AuditActionReportRecorded   = "listing.report_recorded"
	AuditActionListingSuspended = "listing.suspended"
	AuditActionMessageFlagged   = "message.flagged"
	AuditActionDepositHeld      = "deposit.authorized"
	AuditActionDepositCaptured  = "deposit.captured"
	AuditActionDepositReleased  = "deposit.released"
	AuditActionSOSTriggered     = "booking.sos_triggered"
	AuditActionSwapApplied      = "booking.swap_applied"
)
