package dto

import (
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// Auth

type RegisterRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Phone       *string `json:"phone,omitempty"`
	City        *string `json:"city,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateStaffRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	DisplayName  string `json:"display_name" binding:"required"`
	Role         string `json:"role" binding:"required"`
	ShopName     string `json:"shop_name,omitempty"`
	ShopPriority int    `json:"shop_priority,omitempty"`
}

// Orders

// AnswerPayload carries one questionnaire answer. Text answers fill Text,
// choice answers fill Values, upload answers reference a previously
// uploaded file.
type AnswerPayload struct {
	Text     string   `json:"text,omitempty"`
	Values   []string `json:"values,omitempty"`
	FilePath string   `json:"file_path,omitempty"`
	FileSize int64    `json:"file_size,omitempty"`
}

type CreateOrderRequest struct {
	CategoryID          uuid.UUID                `json:"category_id" binding:"required"`
	PlanID              uuid.UUID                `json:"plan_id" binding:"required"`
	Quantity            int                      `json:"quantity" binding:"required"`
	Selections          map[string]string        `json:"selections,omitempty"`
	ValidationRequested bool                     `json:"validation_requested"`
	ShippingAddress     *string                  `json:"shipping_address,omitempty"`
	CustomerNotes       *string                  `json:"customer_notes,omitempty"`
	TemplateID          *uuid.UUID               `json:"template_id,omitempty"`
	LogoPath            *string                  `json:"logo_path,omitempty"`
	DesignFilePath      *string                  `json:"design_file_path,omitempty"`
	Answers             map[string]AnswerPayload `json:"answers,omitempty"`
}

type QuoteRequest struct {
	CategoryID          uuid.UUID         `json:"category_id" binding:"required"`
	PlanID              uuid.UUID         `json:"plan_id" binding:"required"`
	Quantity            int               `json:"quantity" binding:"required"`
	Selections          map[string]string `json:"selections,omitempty"`
	ValidationRequested bool              `json:"validation_requested"`
}

type TransitionRequest struct {
	Action        string  `json:"action" binding:"required"`
	DefectReport  *string `json:"defect_report,omitempty"`
	TrackingCode  *string `json:"tracking_code,omitempty"`
	DraftFilePath *string `json:"draft_file_path,omitempty"`
}

type ResubmitAnswersRequest struct {
	Answers map[string]AnswerPayload `json:"answers" binding:"required"`
}

type AssignStaffRequest struct {
	StaffID uuid.UUID `json:"staff_id" binding:"required"`
	Role    string    `json:"role" binding:"required"`
}

// Payments

type InitiatePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Purpose string    `json:"purpose" binding:"required"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Catalog administration

type CategoryRequest struct {
	Slug        string  `json:"slug" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	BasePrice   int64   `json:"base_price"`
	SortOrder   int     `json:"sort_order"`
	IsActive    bool    `json:"is_active"`
}

type AttributeRequest struct {
	Slug       string `json:"slug" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Kind       string `json:"kind" binding:"required"`
	IsRequired bool   `json:"is_required"`
	SortOrder  int    `json:"sort_order"`
}

type OptionRequest struct {
	Value      string `json:"value" binding:"required"`
	Label      string `json:"label" binding:"required"`
	PriceDelta int64  `json:"price_delta"`
	SortOrder  int    `json:"sort_order"`
}

type PlanRequest struct {
	Slug             string `json:"slug" binding:"required"`
	Name             string `json:"name" binding:"required"`
	Kind             string `json:"kind" binding:"required"`
	Price            int64  `json:"price"`
	MaxRevisions     *int   `json:"max_revisions,omitempty"`
	RevisionPrice    int64  `json:"revision_price"`
	HasQuestionnaire bool   `json:"has_questionnaire"`
	HasTemplates     bool   `json:"has_templates"`
	HasFileUpload    bool   `json:"has_file_upload"`
	SortOrder        int    `json:"sort_order"`
}

type SectionRequest struct {
	Title     string `json:"title" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type QuestionRequest struct {
	Text                string                 `json:"text" binding:"required"`
	Kind                string                 `json:"kind" binding:"required"`
	IsRequired          bool                   `json:"is_required"`
	Placeholder         *string                `json:"placeholder,omitempty"`
	HelpText            *string                `json:"help_text,omitempty"`
	Rules               models.ValidationRules `json:"rules"`
	DependsOnQuestionID *uuid.UUID             `json:"depends_on_question_id,omitempty"`
	DependsOnValues     []string               `json:"depends_on_values,omitempty"`
	SortOrder           int                    `json:"sort_order"`
}

type QuestionOptionRequest struct {
	Value     string `json:"value" binding:"required"`
	Label     string `json:"label" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type TemplateRequest struct {
	Name         string                 `json:"name" binding:"required"`
	PreviewPath  string                 `json:"preview_path" binding:"required"`
	SourcePath   string                 `json:"source_path" binding:"required"`
	SourceWidth  int                    `json:"source_width" binding:"required"`
	SourceHeight int                    `json:"source_height" binding:"required"`
	Placeholder  models.PlaceholderRect `json:"placeholder"`
	StretchLogo  bool                   `json:"stretch_logo"`
	SortOrder    int                    `json:"sort_order"`
}

// ValidateAnswerRequest checks one answer against a question without
// creating anything, for live client-side feedback.
type ValidateAnswerRequest struct {
	QuestionID uuid.UUID     `json:"question_id" binding:"required"`
	Answer     AnswerPayload `json:"answer"`
}

// CompositePreviewRequest asks for the caller's uploaded logo rendered
// onto a gallery template.
type CompositePreviewRequest struct {
	LogoPath string `json:"logo_path" binding:"required"`
}
