package model

import "time"

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingInactive  ListingStatus = "inactive"
	ListingSuspended ListingStatus = "suspended_for_investigation"
)

type Listing struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostID  string `json:"host_id" bson:"host_id" validate:"required"`
	Title   string `json:"title" bson:"title" validate:"required,min=2,max=200"`
	ShortID string `json:"short_id" bson:"short_id" validate:"required"`

	Zone          string        `json:"zone,omitempty" bson:"zone,omitempty"`
	AssetType     string        `json:"asset_type,omitempty" bson:"asset_type,omitempty"`
	Rooms         int           `json:"rooms,omitempty" bson:"rooms,omitempty"`
	PricePerNight int64         `json:"price_per_night" bson:"price_per_night" validate:"min=0"`
	Status        ListingStatus `json:"status" bson:"status"`

	// ViolationCount accumulates fractional strike weight and never
	// decreases through this module.
	ViolationCount  float64    `json:"violation_count" bson:"violation_count"`
	LastViolationAt *time.Time `json:"last_violation_at,omitempty" bson:"last_violation_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
