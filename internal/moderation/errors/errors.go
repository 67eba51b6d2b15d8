package errors

import "errors"

var (
	ErrMessageNotFound = errors.New("chat message not found")

	ErrInvalidID = errors.New("invalid message ID format")
)
