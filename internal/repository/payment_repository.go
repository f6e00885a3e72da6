package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// PaymentRepository persists card-to-card payment attempts.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new instance.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, order_id, customer_id, purpose, amount, status,
	receipt_path, reject_reason, resolved_by, resolved_at,
	created_at, updated_at
`

// Create stores a new payment in PENDING status.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, customer_id, purpose, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.OrderID, p.CustomerID, p.Purpose, p.Amount, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("payment repository: create %w", err)
	}
	return nil
}

// GetByID returns a payment by identifier.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by id %w", err)
	}
	return &p, nil
}

// ListByOrder returns all payments of an order, oldest first.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &payments, query, orderID); err != nil {
		return nil, fmt.Errorf("payment repository: list by order %w", err)
	}
	return payments, nil
}

// ListAwaitingApproval returns the admin review queue, oldest receipt first.
func (r *PaymentRepository) ListAwaitingApproval(ctx context.Context, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1
		ORDER BY updated_at` + fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	if err := r.db.SelectContext(ctx, &payments, query, models.PaymentStatusAwaitingApproval); err != nil {
		return nil, fmt.Errorf("payment repository: list awaiting approval %w", err)
	}
	return payments, nil
}

// AttachReceipt stores the receipt and moves the payment to
// AWAITING_APPROVAL. The write is conditional on the payment still
// accepting receipts (PENDING or FAILED).
func (r *PaymentRepository) AttachReceipt(ctx context.Context, id uuid.UUID, receiptPath string) (*models.Payment, error) {
	var p models.Payment
	query := `
		UPDATE payments SET
			status = $1,
			receipt_path = $2,
			reject_reason = NULL,
			updated_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)
		RETURNING ` + paymentColumns
	err := r.db.GetContext(ctx, &p, query,
		models.PaymentStatusAwaitingApproval, receiptPath, id,
		models.PaymentStatusPending, models.PaymentStatusFailed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoReceiptPending
		}
		return nil, fmt.Errorf("payment repository: attach receipt %w", err)
	}
	return &p, nil
}

// Resolve records an admin decision. The conditional WHERE guarantees the
// payment is resolved at most once; a concurrent loser gets
// ErrAlreadyResolved.
func (r *PaymentRepository) Resolve(ctx context.Context, id uuid.UUID, status string, reason *string, resolvedBy uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	query := `
		UPDATE payments SET
			status = $1,
			reject_reason = $2,
			resolved_by = $3,
			resolved_at = NOW(),
			updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING ` + paymentColumns
	err := r.db.GetContext(ctx, &p, query,
		status, reason, resolvedBy, id, models.PaymentStatusAwaitingApproval)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("payment repository: resolve %w", err)
	}
	return &p, nil
}

// HasSuccess reports whether the order has a SUCCESS payment for the
// given purpose.
func (r *PaymentRepository) HasSuccess(ctx context.Context, orderID uuid.UUID, purpose string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE order_id = $1 AND purpose = $2 AND status = $3
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, orderID, purpose, models.PaymentStatusSuccess); err != nil {
		return false, fmt.Errorf("payment repository: has success %w", err)
	}
	return exists, nil
}

// SuccessCount returns the number of SUCCESS payments of the order for
// the given purpose.
func (r *PaymentRepository) SuccessCount(ctx context.Context, orderID uuid.UUID, purpose string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM payments
		WHERE order_id = $1 AND purpose = $2 AND status = $3
	`
	if err := r.db.GetContext(ctx, &count, query, orderID, purpose, models.PaymentStatusSuccess); err != nil {
		return 0, fmt.Errorf("payment repository: success count %w", err)
	}
	return count, nil
}
