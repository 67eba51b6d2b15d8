package model

import "time"

// DepositLock is an advisory lock serializing concurrent deposit
// authorization attempts for one booking.
type DepositLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
