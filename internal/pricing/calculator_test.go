package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

func testSnapshot() (*catalog.Snapshot, uuid.UUID, uuid.UUID) {
	categoryID := uuid.New()
	planID := uuid.New()

	categories := []models.Category{{
		ID:        categoryID,
		Slug:      "labels",
		Name:      "Labels",
		BasePrice: 200000,
		IsActive:  true,
		Attributes: []models.CategoryAttribute{
			{
				ID:         uuid.New(),
				CategoryID: categoryID,
				Slug:       "material",
				Kind:       models.AttributeKindSingleSelect,
				IsRequired: true,
				IsActive:   true,
				Options: []models.AttributeOption{
					{ID: uuid.New(), Value: "paper", PriceDelta: 0, IsActive: true},
					{ID: uuid.New(), Value: "metallic", PriceDelta: 5000, IsActive: true},
					{ID: uuid.New(), Value: "discontinued", PriceDelta: 9000, IsActive: false},
				},
			},
			{
				ID:         uuid.New(),
				CategoryID: categoryID,
				Slug:       "notes",
				Kind:       models.AttributeKindFreeText,
				IsActive:   true,
			},
		},
		DesignPlans: []models.DesignPlan{{
			ID:         planID,
			CategoryID: categoryID,
			Slug:       "public",
			Kind:       models.PlanKindPublic,
			Price:      300000,
			IsActive:   true,
		}},
	}}

	return catalog.NewSnapshot(1, time.Now(), categories), categoryID, planID
}

func TestCalculator_Compute(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, planID := testSnapshot()

	selections := map[string]string{"material": "metallic", "notes": "matte finish"}
	quote, err := c.Compute(snap, categoryID, planID, selections, 100, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(205000), quote.UnitPrice)
	assert.Equal(t, int64(20500000), quote.PrintPrice)
	assert.Equal(t, int64(300000), quote.DesignPrice)
	assert.Equal(t, int64(0), quote.ValidationPrice)
	assert.Equal(t, int64(20800000), quote.Total)
}

func TestCalculator_ValidationFeeAdded(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, planID := testSnapshot()

	quote, err := c.Compute(snap, categoryID, planID, map[string]string{"material": "paper"}, 1, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), quote.ValidationPrice)
	assert.Equal(t, quote.PrintPrice+quote.DesignPrice+50000, quote.Total)
}

func TestCalculator_MissingRequiredAttribute(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, planID := testSnapshot()

	_, err := c.Compute(snap, categoryID, planID, nil, 1, false)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
}

func TestCalculator_UnknownOptionRejected(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, planID := testSnapshot()

	_, err := c.Compute(snap, categoryID, planID, map[string]string{"material": "wood"}, 1, false)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))

	// Inactive options behave like undefined ones.
	_, err = c.Compute(snap, categoryID, planID, map[string]string{"material": "discontinued"}, 1, false)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
}

func TestCalculator_ZeroQuantityRejected(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, planID := testSnapshot()

	_, err := c.Compute(snap, categoryID, planID, map[string]string{"material": "paper"}, 0, false)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
}

func TestCalculator_UnknownPlanOrCategory(t *testing.T) {
	c := NewCalculator(50000, 100000)
	snap, categoryID, _ := testSnapshot()

	_, err := c.Compute(snap, uuid.New(), uuid.New(), nil, 1, false)
	assert.True(t, apperror.IsNotFound(err))

	_, err = c.Compute(snap, categoryID, uuid.New(), map[string]string{"material": "paper"}, 1, false)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCalculator_FixFee(t *testing.T) {
	c := NewCalculator(50000, 100000)

	assert.Equal(t, int64(100000), c.FixFee(nil))
	assert.Equal(t, int64(100000), c.FixFee(&models.DesignPlan{RevisionPrice: 0}))
	assert.Equal(t, int64(75000), c.FixFee(&models.DesignPlan{RevisionPrice: 75000}))
}
