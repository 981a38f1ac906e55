package domain

import "errors"

// Error taxonomy shared by the ledger, the waitlist and the API layer.
// Packages declare their own sentinels wrapping these.
var (
	ErrValidation      = errors.New("validation error")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
)
