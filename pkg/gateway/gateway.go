// Package gateway wraps the external payment provider used for deposit
// authorization holds. All amounts are in minor currency units.
package gateway

import "context"

// Authorization statuses reported by the provider.
const (
	StatusAwaitingCapture = "awaiting_capture"
	StatusCaptured        = "captured"
	StatusVoided          = "voided"
)

// AuthorizationRequest places a hold on the payer's card.
type AuthorizationRequest struct {
	BookingID string `json:"booking_id"`
	PayerID   string `json:"payer_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Authorization is the provider's view of a hold.
type Authorization struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CaptureRequest settles part or all of an existing hold.
type CaptureRequest struct {
	Amount int64 `json:"amount"`
}

// Gateway is the payment provider boundary. Implementations must be safe
// for concurrent use.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error)
	Capture(ctx context.Context, authorizationID string, req CaptureRequest) (*Authorization, error)
	Cancel(ctx context.Context, authorizationID string) error
}
