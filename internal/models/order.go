package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a print order walking the role-gated lifecycle.
// Version is bumped on every transition for optimistic concurrency.
type Order struct {
	ID            uuid.UUID `db:"id" json:"id"`
	CustomerID    uuid.UUID `db:"customer_id" json:"customer_id"`
	CategoryID    uuid.UUID `db:"category_id" json:"category_id"`
	PlanID        uuid.UUID `db:"plan_id" json:"plan_id"`
	ConfigVersion int64     `db:"config_version" json:"config_version"`
	Status        string    `db:"status" json:"status"`
	Version       int64     `db:"version" json:"version"`
	Quantity      int       `db:"quantity" json:"quantity"`

	// Selected attribute option values, attribute slug -> value.
	Selections map[string]string `db:"-" json:"selections,omitempty"`

	// Plan-specific payload.
	TemplateID     *uuid.UUID `db:"template_id" json:"template_id,omitempty"`
	LogoPath       *string    `db:"logo_path" json:"logo_path,omitempty"`
	CompositePath  *string    `db:"composite_path" json:"composite_path,omitempty"`
	DesignFilePath *string    `db:"design_file_path" json:"design_file_path,omitempty"`

	// Validation cycle.
	ValidationRequested bool    `db:"validation_requested" json:"validation_requested"`
	DefectReport        *string `db:"defect_report" json:"defect_report,omitempty"`
	FixPrice            int64   `db:"fix_price" json:"fix_price"`

	// Revision cycle. Paid extra rounds are derived from SUCCESS FIX
	// payments, not stored on the order.
	RevisionCount int        `db:"revision_count" json:"revision_count"`
	MaxRevisions  *int       `db:"max_revisions" json:"max_revisions,omitempty"`
	FirstDraftAt  *time.Time `db:"first_draft_at" json:"first_draft_at,omitempty"`

	// Staff assignment.
	AssignedDesignerID  *uuid.UUID `db:"assigned_designer_id" json:"assigned_designer_id,omitempty"`
	AssignedValidatorID *uuid.UUID `db:"assigned_validator_id" json:"assigned_validator_id,omitempty"`
	AssignedPrintShopID *uuid.UUID `db:"assigned_printshop_id" json:"assigned_printshop_id,omitempty"`

	// Print-shop offer rotation. The offer cursor advances through active
	// shops; state stays READY_FOR_PRINT while the order is being offered.
	OfferedPrintShopID *uuid.UUID `db:"offered_printshop_id" json:"offered_printshop_id,omitempty"`
	OfferExpiresAt     *time.Time `db:"offer_expires_at" json:"offer_expires_at,omitempty"`
	OfferCursor        int        `db:"offer_cursor" json:"offer_cursor"`

	// Pricing, Tomans.
	DesignPrice     int64 `db:"design_price" json:"design_price"`
	ValidationPrice int64 `db:"validation_price" json:"validation_price"`
	PrintPrice      int64 `db:"print_price" json:"print_price"`
	TotalPrice      int64 `db:"total_price" json:"total_price"`

	// Shipping.
	TrackingCode    *string `db:"tracking_code" json:"tracking_code,omitempty"`
	ShippingAddress *string `db:"shipping_address" json:"shipping_address,omitempty"`
	CustomerNotes   *string `db:"customer_notes" json:"customer_notes,omitempty"`

	AcceptedAt  *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	ShippedAt   *time.Time `db:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the order can no longer transition.
func (o *Order) IsTerminal() bool {
	_, ok := TerminalOrderStatuses[o.Status]
	return ok
}

// QuestionAnswer is one stored answer of an order's questionnaire.
type QuestionAnswer struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	QuestionID uuid.UUID `db:"question_id" json:"question_id"`
	Text       *string   `db:"text" json:"text,omitempty"`
	Values     []string  `db:"-" json:"values,omitempty"`
	FilePath   *string   `db:"file_path" json:"file_path,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PrintShop is the rotation view of a print-shop user.
type PrintShop struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Priority  int       `db:"priority" json:"priority"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
