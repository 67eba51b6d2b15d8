package model

import "time"

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingActive      BookingStatus = "active"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingSOSCritical BookingStatus = "sos_critical"
)

type DepositTier string

const (
	TierStandard DepositTier = "STANDARD"
	TierLuxury   DepositTier = "LUXURY"
)

type HostResponseStatus string

const (
	HostResponseWaiting   HostResponseStatus = "waiting"
	HostResponseResponded HostResponseStatus = "responded"
	HostResponseResolved  HostResponseStatus = "resolved"
)

// Financials tracks the security-deposit lifecycle for one booking.
// DepositCaptured and DepositReleased are mutually exclusive terminal
// outcomes of the same authorization.
type Financials struct {
	DepositTier           DepositTier `json:"deposit_tier,omitempty" bson:"deposit_tier,omitempty"`
	DepositAuthID         string      `json:"deposit_auth_id,omitempty" bson:"deposit_auth_id,omitempty"`
	DepositHoldAmount     int64       `json:"deposit_hold_amount,omitempty" bson:"deposit_hold_amount,omitempty"`
	DepositCaptured       bool        `json:"deposit_captured" bson:"deposit_captured"`
	DepositCapturedAmount int64       `json:"deposit_captured_amount,omitempty" bson:"deposit_captured_amount,omitempty"`
	DepositReleased       bool        `json:"deposit_released" bson:"deposit_released"`
	DepositReleasedAt     *time.Time  `json:"deposit_released_at,omitempty" bson:"deposit_released_at,omitempty"`
}

// HasLiveAuthorization reports whether a hold exists that has not yet
// reached a terminal outcome.
func (f Financials) HasLiveAuthorization() bool {
	return f.DepositAuthID != "" && !f.DepositCaptured && !f.DepositReleased
}

type Legal struct {
	LiabilityWaiverAccepted bool       `json:"liability_waiver_accepted" bson:"liability_waiver_accepted"`
	LiabilityWaiverDate     *time.Time `json:"liability_waiver_date,omitempty" bson:"liability_waiver_date,omitempty"`
}

type EmergencyState struct {
	IsActive           bool               `json:"is_active" bson:"is_active"`
	TriggeredAt        *time.Time         `json:"triggered_at,omitempty" bson:"triggered_at,omitempty"`
	Stage              int                `json:"stage" bson:"stage"`
	HostResponseStatus HostResponseStatus `json:"host_response_status,omitempty" bson:"host_response_status,omitempty"`
}

type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuestID   string        `json:"guest_id" bson:"guest_id" validate:"required"`
	HostID    string        `json:"host_id" bson:"host_id" validate:"required"`
	ListingID string        `json:"listing_id" bson:"listing_id" validate:"required,mongodb"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required"`

	StartDate time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`

	BasePrice  int64 `json:"base_price" bson:"base_price"`
	TotalPrice int64 `json:"total_price" bson:"total_price"`

	Financials Financials     `json:"financials" bson:"financials"`
	Legal      Legal          `json:"legal" bson:"legal"`
	Emergency  EmergencyState `json:"emergency_protocol" bson:"emergency_protocol"`

	// Version is the optimistic-concurrency token: every state-changing
	// update matches on it and increments it.
	Version   int64     `json:"-" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
