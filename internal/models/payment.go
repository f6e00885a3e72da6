package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one card-to-card payment attempt against an order.
// Several payments may exist per order, one per purpose/attempt.
type Payment struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	OrderID      uuid.UUID  `db:"order_id" json:"order_id"`
	CustomerID   uuid.UUID  `db:"customer_id" json:"customer_id"`
	Purpose      string     `db:"purpose" json:"purpose"`
	Amount       int64      `db:"amount" json:"amount"`
	Status       string     `db:"status" json:"status"`
	ReceiptPath  *string    `db:"receipt_path" json:"receipt_path,omitempty"`
	RejectReason *string    `db:"reject_reason" json:"reject_reason,omitempty"`
	ResolvedBy   *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
