package repository

import "errors"

// Repository-level errors.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrVersionNotFound  = errors.New("catalog version not found")
	ErrVersionConflict  = errors.New("order version conflict")
	ErrOfferMoved       = errors.New("print offer already advanced")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAlreadyResolved  = errors.New("payment already resolved")
	ErrNoReceiptPending = errors.New("payment is not awaiting a receipt")
)
