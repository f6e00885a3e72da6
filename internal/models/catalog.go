package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a product category (labels, invoices, business cards, ...).
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	BasePrice   int64     `db:"base_price" json:"base_price"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Attributes  []CategoryAttribute `json:"attributes,omitempty"`
	DesignPlans []DesignPlan        `json:"design_plans,omitempty"`
}

// CategoryAttribute is a configurable attribute of a category (size, material, ...).
type CategoryAttribute struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Slug       string    `db:"slug" json:"slug"`
	Name       string    `db:"name" json:"name"`
	Kind       string    `db:"kind" json:"kind"` // FREE_TEXT | SINGLE_SELECT
	IsRequired bool      `db:"is_required" json:"is_required"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
	IsActive   bool      `db:"is_active" json:"is_active"`

	Options []AttributeOption `json:"options,omitempty"`
}

// AttributeOption is one selectable value of a SINGLE_SELECT attribute.
type AttributeOption struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AttributeID uuid.UUID `db:"attribute_id" json:"attribute_id"`
	Value       string    `db:"value" json:"value"`
	Label       string    `db:"label" json:"label"`
	PriceDelta  int64     `db:"price_delta" json:"price_delta"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// DesignPlan is one design offering of a category.
// MaxRevisions == nil means unlimited revisions.
type DesignPlan struct {
	ID               uuid.UUID `db:"id" json:"id"`
	CategoryID       uuid.UUID `db:"category_id" json:"category_id"`
	Slug             string    `db:"slug" json:"slug"`
	Name             string    `db:"name" json:"name"`
	Kind             string    `db:"kind" json:"kind"` // PUBLIC | SEMI_PRIVATE | PRIVATE | OWN_DESIGN
	Price            int64     `db:"price" json:"price"`
	MaxRevisions     *int      `db:"max_revisions" json:"max_revisions,omitempty"`
	RevisionPrice    int64     `db:"revision_price" json:"revision_price"`
	HasQuestionnaire bool      `db:"has_questionnaire" json:"has_questionnaire"`
	HasTemplates     bool      `db:"has_templates" json:"has_templates"`
	HasFileUpload    bool      `db:"has_file_upload" json:"has_file_upload"`
	SortOrder        int       `db:"sort_order" json:"sort_order"`
	IsActive         bool      `db:"is_active" json:"is_active"`

	Sections  []QuestionSection `json:"sections,omitempty"`
	Templates []DesignTemplate  `json:"templates,omitempty"`
}

// QuestionSection groups questionnaire questions under a plan.
type QuestionSection struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PlanID    uuid.UUID `db:"plan_id" json:"plan_id"`
	Title     string    `db:"title" json:"title"`
	SortOrder int       `db:"sort_order" json:"sort_order"`

	Questions []DesignQuestion `json:"questions,omitempty"`
}

// ValidationRules is the typed per-kind rule set of a question.
type ValidationRules struct {
	MinLength     *int     `json:"min_length,omitempty"`
	MaxLength     *int     `json:"max_length,omitempty"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
	MinSelections *int     `json:"min_selections,omitempty"`
	MaxSelections *int     `json:"max_selections,omitempty"`
	MaxFileSize   *int64   `json:"max_file_size,omitempty"` // bytes
	AllowedTypes  []string `json:"allowed_types,omitempty"` // extensions, lowercase
}

// DesignQuestion is one questionnaire question of a plan.
// A question with DependsOnQuestionID set is visible only while the
// referenced (earlier) question's answer is in DependsOnValues.
type DesignQuestion struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	PlanID              uuid.UUID       `db:"plan_id" json:"plan_id"`
	SectionID           *uuid.UUID      `db:"section_id" json:"section_id,omitempty"`
	Text                string          `db:"text" json:"text"`
	Kind                string          `db:"kind" json:"kind"`
	IsRequired          bool            `db:"is_required" json:"is_required"`
	Placeholder         *string         `db:"placeholder" json:"placeholder,omitempty"`
	HelpText            *string         `db:"help_text" json:"help_text,omitempty"`
	Rules               ValidationRules `db:"-" json:"rules"`
	DependsOnQuestionID *uuid.UUID      `db:"depends_on_question_id" json:"depends_on_question_id,omitempty"`
	DependsOnValues     []string        `db:"-" json:"depends_on_values,omitempty"`
	SortOrder           int             `db:"sort_order" json:"sort_order"`
	IsActive            bool            `db:"is_active" json:"is_active"`

	Options []QuestionOption `json:"options,omitempty"`
}

// QuestionOption is one choice of a SINGLE_CHOICE / MULTI_CHOICE question.
type QuestionOption struct {
	ID         uuid.UUID `db:"id" json:"id"`
	QuestionID uuid.UUID `db:"question_id" json:"question_id"`
	Value      string    `db:"value" json:"value"`
	Label      string    `db:"label" json:"label"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
}

// PlaceholderRect is the logo placeholder rectangle in source-image pixels.
type PlaceholderRect struct {
	X      int `db:"placeholder_x" json:"x"`
	Y      int `db:"placeholder_y" json:"y"`
	Width  int `db:"placeholder_width" json:"width"`
	Height int `db:"placeholder_height" json:"height"`
}

// DesignTemplate is a gallery template of a plan with HasTemplates set.
type DesignTemplate struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PlanID      uuid.UUID       `db:"plan_id" json:"plan_id"`
	Name        string          `db:"name" json:"name"`
	PreviewPath string          `db:"preview_path" json:"preview_path"`
	SourcePath  string          `db:"source_path" json:"source_path"`
	SourceWidth int             `db:"source_width" json:"source_width"`
	SourceHeight int            `db:"source_height" json:"source_height"`
	Placeholder PlaceholderRect `json:"placeholder"`
	StretchLogo bool            `db:"stretch_logo" json:"stretch_logo"`
	SortOrder   int             `db:"sort_order" json:"sort_order"`
	IsActive    bool            `db:"is_active" json:"is_active"`
}
