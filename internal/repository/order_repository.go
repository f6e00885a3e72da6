package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// OrderRepository is responsible for orders, their answers and the
// print-shop offer rotation.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new instance.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderRow mirrors the orders table; selections and answer values are
// stored as JSONB.
type orderRow struct {
	models.Order
	SelectionsRaw []byte `db:"selections"`
}

func (r *OrderRepository) scanRow(row *orderRow) (*models.Order, error) {
	o := row.Order
	if len(row.SelectionsRaw) > 0 {
		if err := json.Unmarshal(row.SelectionsRaw, &o.Selections); err != nil {
			return nil, fmt.Errorf("order repository: decode selections %w", err)
		}
	}
	return &o, nil
}

const orderColumns = `
	id, customer_id, category_id, plan_id, config_version, status, version,
	quantity, selections, template_id, logo_path, composite_path,
	design_file_path, validation_requested, defect_report, fix_price,
	revision_count, max_revisions, first_draft_at,
	assigned_designer_id, assigned_validator_id, assigned_printshop_id,
	offered_printshop_id, offer_expires_at, offer_cursor,
	design_price, validation_price, print_price, total_price,
	tracking_code, shipping_address, customer_notes,
	accepted_at, shipped_at, delivered_at, cancelled_at,
	created_at, updated_at
`

// Create stores the order and its questionnaire answers in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order, answers []models.QuestionAnswer) error {
	selections, err := json.Marshal(o.Selections)
	if err != nil {
		return fmt.Errorf("order repository: encode selections %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("order repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO orders (
			customer_id, category_id, plan_id, config_version, status, quantity,
			selections, template_id, logo_path, composite_path, design_file_path,
			validation_requested, max_revisions, fix_price,
			design_price, validation_price, print_price, total_price,
			shipping_address, customer_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, version, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		o.CustomerID, o.CategoryID, o.PlanID, o.ConfigVersion, o.Status, o.Quantity,
		selections, o.TemplateID, o.LogoPath, o.CompositePath, o.DesignFilePath,
		o.ValidationRequested, o.MaxRevisions, o.FixPrice,
		o.DesignPrice, o.ValidationPrice, o.PrintPrice, o.TotalPrice,
		o.ShippingAddress, o.CustomerNotes,
	).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("order repository: insert order %w", err)
	}

	if err = insertAnswers(ctx, tx, o.ID, answers); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order repository: commit %w", err)
	}
	return nil
}

// GetByID returns an order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var row orderRow
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return r.scanRow(&row)
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1`
	args := []interface{}{customerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	return r.list(ctx, query, args...)
}

// ListPrintQueue returns orders currently offered to the given print shop.
func (r *OrderRepository) ListPrintQueue(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND offered_printshop_id = $2
		ORDER BY created_at` + fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	return r.list(ctx, query, models.OrderStatusReadyForPrint, shopID)
}

// ListByStatus returns orders in the given status, oldest first.
func (r *OrderRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1
		ORDER BY created_at` + fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	return r.list(ctx, query, status)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("order repository: list %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for i := range rows {
		o, err := r.scanRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// ApplyTransition persists the mutated order under an optimistic
// concurrency check. The write succeeds only while the stored version
// still equals expectedVersion; a stale write returns ErrVersionConflict
// and the caller must re-read and retry.
func (r *OrderRepository) ApplyTransition(ctx context.Context, o *models.Order, expectedVersion int64) error {
	query := `
		UPDATE orders SET
			status = $1,
			version = version + 1,
			defect_report = $2,
			fix_price = $3,
			revision_count = $4,
			first_draft_at = $5,
			assigned_designer_id = $6,
			assigned_validator_id = $7,
			assigned_printshop_id = $8,
			offered_printshop_id = $9,
			offer_expires_at = $10,
			offer_cursor = $11,
			composite_path = $12,
			tracking_code = $13,
			accepted_at = $14,
			shipped_at = $15,
			delivered_at = $16,
			cancelled_at = $17,
			updated_at = NOW()
		WHERE id = $18 AND version = $19
	`
	res, err := r.db.ExecContext(ctx, query,
		o.Status, o.DefectReport, o.FixPrice, o.RevisionCount, o.FirstDraftAt,
		o.AssignedDesignerID, o.AssignedValidatorID, o.AssignedPrintShopID,
		o.OfferedPrintShopID, o.OfferExpiresAt, o.OfferCursor,
		o.CompositePath, o.TrackingCode,
		o.AcceptedAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt,
		o.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("order repository: apply transition %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order repository: apply transition rows %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	o.Version = expectedVersion + 1
	return nil
}

// ListExpiredOffers returns READY_FOR_PRINT orders whose offer window has
// passed, oldest expiry first.
func (r *OrderRepository) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND offered_printshop_id IS NOT NULL AND offer_expires_at <= $2
		ORDER BY offer_expires_at` + fmt.Sprintf(` LIMIT %d`, limit)
	return r.list(ctx, query, models.OrderStatusReadyForPrint, now)
}

// AdvanceOffer moves an expired offer to the next shop. The update is
// keyed on the shop that held the expired offer, so replays after a crash
// or two racing scheduler ticks advance the cursor at most once.
func (r *OrderRepository) AdvanceOffer(ctx context.Context, orderID, fromShopID, toShopID uuid.UUID, expiresAt time.Time, cursor int) error {
	query := `
		UPDATE orders SET
			offered_printshop_id = $1,
			offer_expires_at = $2,
			offer_cursor = $3,
			updated_at = NOW()
		WHERE id = $4 AND status = $5 AND offered_printshop_id = $6 AND offer_expires_at <= NOW()
	`
	res, err := r.db.ExecContext(ctx, query,
		toShopID, expiresAt, cursor, orderID, models.OrderStatusReadyForPrint, fromShopID)
	if err != nil {
		return fmt.Errorf("order repository: advance offer %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order repository: advance offer rows %w", err)
	}
	if affected == 0 {
		return ErrOfferMoved
	}
	return nil
}

// GetAnswers returns the stored questionnaire answers of an order.
func (r *OrderRepository) GetAnswers(ctx context.Context, orderID uuid.UUID) ([]models.QuestionAnswer, error) {
	type answerRow struct {
		models.QuestionAnswer
		ValuesRaw []byte `db:"values"`
	}
	var rows []answerRow
	query := `
		SELECT id, order_id, question_id, text, "values", file_path, created_at
		FROM question_answers
		WHERE order_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query, orderID); err != nil {
		return nil, fmt.Errorf("order repository: get answers %w", err)
	}

	out := make([]models.QuestionAnswer, 0, len(rows))
	for i := range rows {
		a := rows[i].QuestionAnswer
		if len(rows[i].ValuesRaw) > 0 {
			if err := json.Unmarshal(rows[i].ValuesRaw, &a.Values); err != nil {
				return nil, fmt.Errorf("order repository: decode answer values %w", err)
			}
		}
		out = append(out, a)
	}
	return out, nil
}

// ReplaceAnswers swaps the order's stored answers for a revision
// re-submission. Stale answers are removed, not kept.
func (r *OrderRepository) ReplaceAnswers(ctx context.Context, orderID uuid.UUID, answers []models.QuestionAnswer) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("order repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM question_answers WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("order repository: delete answers %w", err)
	}
	if err = insertAnswers(ctx, tx, orderID, answers); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order repository: commit %w", err)
	}
	return nil
}

func insertAnswers(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, answers []models.QuestionAnswer) error {
	query := `
		INSERT INTO question_answers (order_id, question_id, text, "values", file_path)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range answers {
		a := &answers[i]
		var values []byte
		if len(a.Values) > 0 {
			raw, err := json.Marshal(a.Values)
			if err != nil {
				return fmt.Errorf("order repository: encode answer values %w", err)
			}
			values = raw
		}
		if _, err := tx.ExecContext(ctx, query, orderID, a.QuestionID, a.Text, values, a.FilePath); err != nil {
			return fmt.Errorf("order repository: insert answer %w", err)
		}
	}
	return nil
}

// ListActivePrintShops returns active shops in rotation order
// (priority, then seniority).
func (r *OrderRepository) ListActivePrintShops(ctx context.Context) ([]models.PrintShop, error) {
	var shops []models.PrintShop
	query := `
		SELECT user_id, name, priority, is_active, created_at
		FROM print_shops
		WHERE is_active = TRUE
		ORDER BY priority, created_at
	`
	if err := r.db.SelectContext(ctx, &shops, query); err != nil {
		return nil, fmt.Errorf("order repository: list print shops %w", err)
	}
	return shops, nil
}
