package pricing

import (
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Quote is the price breakdown of one order, in Tomans.
type Quote struct {
	UnitPrice       int64 `json:"unit_price"`
	PrintPrice      int64 `json:"print_price"`
	DesignPrice     int64 `json:"design_price"`
	ValidationPrice int64 `json:"validation_price"`
	Total           int64 `json:"total"`
}

// Calculator derives order prices from a pinned catalog snapshot.
type Calculator struct {
	validationFee int64
	defaultFixFee int64
}

// NewCalculator creates a calculator with the configured fees.
func NewCalculator(validationFee, defaultFixFee int64) *Calculator {
	return &Calculator{validationFee: validationFee, defaultFixFee: defaultFixFee}
}

// Compute builds the price quote for a category/plan selection.
// Unit price is the category base price plus the deltas of every selected
// single-select option; print price multiplies by quantity. Selections map
// attribute slug to the chosen option value.
func (c *Calculator) Compute(
	snap *catalog.Snapshot,
	categoryID, planID uuid.UUID,
	selections map[string]string,
	quantity int,
	validationRequested bool,
) (*Quote, error) {
	if quantity <= 0 {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "quantity must be positive")
	}

	cat, ok := snap.Category(categoryID)
	if !ok || !cat.IsActive {
		return nil, apperror.ErrCategoryNotFound
	}
	plan, ok := snap.Plan(planID)
	if !ok || !plan.IsActive || plan.CategoryID != categoryID {
		return nil, apperror.New(apperror.ErrCodeNotFound, "design plan not found in category")
	}

	unit := cat.BasePrice
	for ai := range cat.Attributes {
		attr := &cat.Attributes[ai]
		if !attr.IsActive {
			continue
		}
		value, selected := selections[attr.Slug]
		if !selected {
			if attr.IsRequired {
				return nil, apperror.Newf(apperror.ErrCodeBadRequest,
					"attribute %q requires a selection", attr.Slug)
			}
			continue
		}
		if attr.Kind != models.AttributeKindSingleSelect {
			continue // free-text values carry no price delta
		}
		opt := findOption(attr, value)
		if opt == nil {
			return nil, apperror.Newf(apperror.ErrCodeBadRequest,
				"attribute %q has no option %q", attr.Slug, value)
		}
		unit += opt.PriceDelta
	}

	quote := &Quote{
		UnitPrice:   unit,
		PrintPrice:  unit * int64(quantity),
		DesignPrice: plan.Price,
	}
	if validationRequested {
		quote.ValidationPrice = c.validationFee
	}
	quote.Total = quote.PrintPrice + quote.DesignPrice + quote.ValidationPrice
	return quote, nil
}

// FixFee returns the per-round fee charged for a paid extra revision of the
// given plan. A plan without its own revision price falls back to the
// configured default.
func (c *Calculator) FixFee(plan *models.DesignPlan) int64 {
	if plan != nil && plan.RevisionPrice > 0 {
		return plan.RevisionPrice
	}
	return c.defaultFixFee
}

func findOption(attr *models.CategoryAttribute, value string) *models.AttributeOption {
	for oi := range attr.Options {
		if attr.Options[oi].IsActive && attr.Options[oi].Value == value {
			return &attr.Options[oi]
		}
	}
	return nil
}
