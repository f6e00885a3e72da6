package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/validation"
)

// CatalogService exposes the published catalog to customers and lets
// admins evolve it. Every admin write clones the latest configuration,
// mutates the copy and publishes it as a new immutable version; orders in
// flight keep reading the version they were created under.
type CatalogService struct {
	store *catalog.Store
}

// NewCatalogService creates the service.
func NewCatalogService(store *catalog.Store) *CatalogService {
	return &CatalogService{store: store}
}

// Latest returns the currently published snapshot.
func (s *CatalogService) Latest(ctx context.Context) (*catalog.Snapshot, error) {
	return s.store.Latest(ctx)
}

// Version returns a pinned snapshot.
func (s *CatalogService) Version(ctx context.Context, version int64) (*catalog.Snapshot, error) {
	return s.store.Version(ctx, version)
}

// ListCategories returns active categories of the published catalog.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ActiveCategories(), nil
}

// CategoryBySlug returns one active category with its full tree.
func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	cat, ok := snap.CategoryBySlug(slug)
	if !ok || !cat.IsActive {
		return nil, apperror.ErrCategoryNotFound
	}
	return cat, nil
}

// PlanQuestions returns the ordered questionnaire of a plan in the
// published catalog.
func (s *CatalogService) PlanQuestions(ctx context.Context, planID uuid.UUID) ([]models.DesignQuestion, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	plan, ok := snap.Plan(planID)
	if !ok || !plan.IsActive {
		return nil, apperror.New(apperror.ErrCodeNotFound, "design plan not found")
	}
	if !plan.HasQuestionnaire {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "the plan has no questionnaire")
	}
	return snap.PlanQuestions(planID), nil
}

// CategoryInput carries category fields for create/update.
type CategoryInput struct {
	Slug        string
	Name        string
	Description *string
	Icon        *string
	BasePrice   int64
	SortOrder   int
	IsActive    bool
}

// CreateCategory publishes a new version containing the category.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*catalog.Snapshot, uuid.UUID, error) {
	if err := validation.ValidateSlug("category slug", in.Slug); err != nil {
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidateNonEmpty("category name", in.Name); err != nil {
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		return append(categories, models.Category{
			ID:          id,
			Slug:        in.Slug,
			Name:        in.Name,
			Description: in.Description,
			Icon:        in.Icon,
			BasePrice:   in.BasePrice,
			SortOrder:   in.SortOrder,
			IsActive:    in.IsActive,
		}), nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// UpdateCategory publishes a new version with the category changed.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*catalog.Snapshot, error) {
	if err := validation.ValidateSlug("category slug", in.Slug); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	return s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		cat := findCategory(categories, id)
		if cat == nil {
			return nil, apperror.ErrCategoryNotFound
		}
		cat.Slug = in.Slug
		cat.Name = in.Name
		cat.Description = in.Description
		cat.Icon = in.Icon
		cat.BasePrice = in.BasePrice
		cat.SortOrder = in.SortOrder
		cat.IsActive = in.IsActive
		return categories, nil
	})
}

// AttributeInput carries attribute fields.
type AttributeInput struct {
	Slug       string
	Name       string
	Kind       string
	IsRequired bool
	SortOrder  int
}

// AddAttribute publishes a new version with the attribute added.
func (s *CatalogService) AddAttribute(ctx context.Context, categoryID uuid.UUID, in AttributeInput) (*catalog.Snapshot, uuid.UUID, error) {
	if err := validation.ValidateSlug("attribute slug", in.Slug); err != nil {
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		cat := findCategory(categories, categoryID)
		if cat == nil {
			return nil, apperror.ErrCategoryNotFound
		}
		cat.Attributes = append(cat.Attributes, models.CategoryAttribute{
			ID:         id,
			CategoryID: categoryID,
			Slug:       in.Slug,
			Name:       in.Name,
			Kind:       in.Kind,
			IsRequired: in.IsRequired,
			SortOrder:  in.SortOrder,
			IsActive:   true,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// OptionInput carries attribute option fields.
type OptionInput struct {
	Value      string
	Label      string
	PriceDelta int64
	SortOrder  int
}

// AddOption publishes a new version with the option added.
func (s *CatalogService) AddOption(ctx context.Context, attributeID uuid.UUID, in OptionInput) (*catalog.Snapshot, uuid.UUID, error) {
	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		attr := findAttribute(categories, attributeID)
		if attr == nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "attribute not found")
		}
		attr.Options = append(attr.Options, models.AttributeOption{
			ID:          id,
			AttributeID: attributeID,
			Value:       in.Value,
			Label:       in.Label,
			PriceDelta:  in.PriceDelta,
			SortOrder:   in.SortOrder,
			IsActive:    true,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// PlanInput carries design plan fields.
type PlanInput struct {
	Slug             string
	Name             string
	Kind             string
	Price            int64
	MaxRevisions     *int
	RevisionPrice    int64
	HasQuestionnaire bool
	HasTemplates     bool
	HasFileUpload    bool
	SortOrder        int
}

// AddDesignPlan publishes a new version with the plan added.
func (s *CatalogService) AddDesignPlan(ctx context.Context, categoryID uuid.UUID, in PlanInput) (*catalog.Snapshot, uuid.UUID, error) {
	if err := validation.ValidateSlug("plan slug", in.Slug); err != nil {
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		cat := findCategory(categories, categoryID)
		if cat == nil {
			return nil, apperror.ErrCategoryNotFound
		}
		cat.DesignPlans = append(cat.DesignPlans, models.DesignPlan{
			ID:               id,
			CategoryID:       categoryID,
			Slug:             in.Slug,
			Name:             in.Name,
			Kind:             in.Kind,
			Price:            in.Price,
			MaxRevisions:     in.MaxRevisions,
			RevisionPrice:    in.RevisionPrice,
			HasQuestionnaire: in.HasQuestionnaire,
			HasTemplates:     in.HasTemplates,
			HasFileUpload:    in.HasFileUpload,
			SortOrder:        in.SortOrder,
			IsActive:         true,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// AddQuestionSection publishes a new version with the section added.
func (s *CatalogService) AddQuestionSection(ctx context.Context, planID uuid.UUID, title string, sortOrder int) (*catalog.Snapshot, uuid.UUID, error) {
	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		plan := findPlan(categories, planID)
		if plan == nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "design plan not found")
		}
		plan.Sections = append(plan.Sections, models.QuestionSection{
			ID:        id,
			PlanID:    planID,
			Title:     title,
			SortOrder: sortOrder,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// QuestionInput carries question fields.
type QuestionInput struct {
	Text                string
	Kind                string
	IsRequired          bool
	Placeholder         *string
	HelpText            *string
	Rules               models.ValidationRules
	DependsOnQuestionID *uuid.UUID
	DependsOnValues     []string
	SortOrder           int
}

// AddQuestion publishes a new version with the question added to a section.
func (s *CatalogService) AddQuestion(ctx context.Context, sectionID uuid.UUID, in QuestionInput) (*catalog.Snapshot, uuid.UUID, error) {
	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		section, plan := findSection(categories, sectionID)
		if section == nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "question section not found")
		}
		sid := sectionID
		section.Questions = append(section.Questions, models.DesignQuestion{
			ID:                  id,
			PlanID:              plan.ID,
			SectionID:           &sid,
			Text:                in.Text,
			Kind:                in.Kind,
			IsRequired:          in.IsRequired,
			Placeholder:         in.Placeholder,
			HelpText:            in.HelpText,
			Rules:               in.Rules,
			DependsOnQuestionID: in.DependsOnQuestionID,
			DependsOnValues:     in.DependsOnValues,
			SortOrder:           in.SortOrder,
			IsActive:            true,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// AddQuestionOption publishes a new version with the choice added.
func (s *CatalogService) AddQuestionOption(ctx context.Context, questionID uuid.UUID, value, label string, sortOrder int) (*catalog.Snapshot, uuid.UUID, error) {
	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		q := findQuestion(categories, questionID)
		if q == nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "question not found")
		}
		q.Options = append(q.Options, models.QuestionOption{
			ID:         id,
			QuestionID: questionID,
			Value:      value,
			Label:      label,
			SortOrder:  sortOrder,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// TemplateInput carries gallery template fields.
type TemplateInput struct {
	Name         string
	PreviewPath  string
	SourcePath   string
	SourceWidth  int
	SourceHeight int
	Placeholder  models.PlaceholderRect
	StretchLogo  bool
	SortOrder    int
}

// AddTemplate publishes a new version with the template added.
func (s *CatalogService) AddTemplate(ctx context.Context, planID uuid.UUID, in TemplateInput) (*catalog.Snapshot, uuid.UUID, error) {
	id := uuid.New()
	snap, err := s.mutate(ctx, func(categories []models.Category) ([]models.Category, error) {
		plan := findPlan(categories, planID)
		if plan == nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "design plan not found")
		}
		plan.Templates = append(plan.Templates, models.DesignTemplate{
			ID:           id,
			PlanID:       planID,
			Name:         in.Name,
			PreviewPath:  in.PreviewPath,
			SourcePath:   in.SourcePath,
			SourceWidth:  in.SourceWidth,
			SourceHeight: in.SourceHeight,
			Placeholder:  in.Placeholder,
			StretchLogo:  in.StretchLogo,
			SortOrder:    in.SortOrder,
			IsActive:     true,
		})
		return categories, nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return snap, id, nil
}

// mutate runs one clone-modify-publish cycle.
func (s *CatalogService) mutate(ctx context.Context, fn func([]models.Category) ([]models.Category, error)) (*catalog.Snapshot, error) {
	latest, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := latest.CloneCategories()
	if err != nil {
		return nil, err
	}

	categories, err = fn(categories)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Publish(ctx, categories)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"version": snap.Version,
	}).Info("catalog: new configuration version published")
	return snap, nil
}

func findCategory(categories []models.Category, id uuid.UUID) *models.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

func findAttribute(categories []models.Category, id uuid.UUID) *models.CategoryAttribute {
	for ci := range categories {
		for ai := range categories[ci].Attributes {
			if categories[ci].Attributes[ai].ID == id {
				return &categories[ci].Attributes[ai]
			}
		}
	}
	return nil
}

func findPlan(categories []models.Category, id uuid.UUID) *models.DesignPlan {
	for ci := range categories {
		for pi := range categories[ci].DesignPlans {
			if categories[ci].DesignPlans[pi].ID == id {
				return &categories[ci].DesignPlans[pi]
			}
		}
	}
	return nil
}

func findSection(categories []models.Category, id uuid.UUID) (*models.QuestionSection, *models.DesignPlan) {
	for ci := range categories {
		for pi := range categories[ci].DesignPlans {
			plan := &categories[ci].DesignPlans[pi]
			for si := range plan.Sections {
				if plan.Sections[si].ID == id {
					return &plan.Sections[si], plan
				}
			}
		}
	}
	return nil, nil
}

func findQuestion(categories []models.Category, id uuid.UUID) *models.DesignQuestion {
	for ci := range categories {
		for pi := range categories[ci].DesignPlans {
			plan := &categories[ci].DesignPlans[pi]
			for si := range plan.Sections {
				for qi := range plan.Sections[si].Questions {
					if plan.Sections[si].Questions[qi].ID == id {
						return &plan.Sections[si].Questions[qi]
					}
				}
			}
		}
	}
	return nil
}
