package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// Snapshot is one immutable version of the whole catalog configuration.
// Orders pin the version they were created against, so admin edits never
// retroactively change an existing order's pricing or questionnaire shape.
type Snapshot struct {
	Version    int64             `json:"version"`
	CreatedAt  time.Time         `json:"created_at"`
	Categories []models.Category `json:"categories"`

	categoryByID   map[uuid.UUID]*models.Category
	categoryBySlug map[string]*models.Category
	attributeByID  map[uuid.UUID]*models.CategoryAttribute
	planByID       map[uuid.UUID]*models.DesignPlan
	questionByID   map[uuid.UUID]*models.DesignQuestion
	templateByID   map[uuid.UUID]*models.DesignTemplate
}

// NewSnapshot builds an indexed snapshot over the given categories.
// Nested slices are sorted by display order; the caller must not mutate
// categories afterwards.
func NewSnapshot(version int64, createdAt time.Time, categories []models.Category) *Snapshot {
	s := &Snapshot{
		Version:    version,
		CreatedAt:  createdAt,
		Categories: categories,
	}
	s.sortAll()
	s.buildIndex()
	return s
}

func (s *Snapshot) sortAll() {
	sort.SliceStable(s.Categories, func(i, j int) bool {
		return s.Categories[i].SortOrder < s.Categories[j].SortOrder
	})
	for ci := range s.Categories {
		cat := &s.Categories[ci]
		sort.SliceStable(cat.Attributes, func(i, j int) bool {
			return cat.Attributes[i].SortOrder < cat.Attributes[j].SortOrder
		})
		sort.SliceStable(cat.DesignPlans, func(i, j int) bool {
			return cat.DesignPlans[i].SortOrder < cat.DesignPlans[j].SortOrder
		})
		for ai := range cat.Attributes {
			attr := &cat.Attributes[ai]
			sort.SliceStable(attr.Options, func(i, j int) bool {
				return attr.Options[i].SortOrder < attr.Options[j].SortOrder
			})
		}
		for pi := range cat.DesignPlans {
			plan := &cat.DesignPlans[pi]
			sort.SliceStable(plan.Sections, func(i, j int) bool {
				return plan.Sections[i].SortOrder < plan.Sections[j].SortOrder
			})
			sort.SliceStable(plan.Templates, func(i, j int) bool {
				return plan.Templates[i].SortOrder < plan.Templates[j].SortOrder
			})
			for si := range plan.Sections {
				sec := &plan.Sections[si]
				sort.SliceStable(sec.Questions, func(i, j int) bool {
					return sec.Questions[i].SortOrder < sec.Questions[j].SortOrder
				})
			}
		}
	}
}

func (s *Snapshot) buildIndex() {
	s.categoryByID = make(map[uuid.UUID]*models.Category)
	s.categoryBySlug = make(map[string]*models.Category)
	s.attributeByID = make(map[uuid.UUID]*models.CategoryAttribute)
	s.planByID = make(map[uuid.UUID]*models.DesignPlan)
	s.questionByID = make(map[uuid.UUID]*models.DesignQuestion)
	s.templateByID = make(map[uuid.UUID]*models.DesignTemplate)

	for ci := range s.Categories {
		cat := &s.Categories[ci]
		s.categoryByID[cat.ID] = cat
		s.categoryBySlug[cat.Slug] = cat
		for ai := range cat.Attributes {
			s.attributeByID[cat.Attributes[ai].ID] = &cat.Attributes[ai]
		}
		for pi := range cat.DesignPlans {
			plan := &cat.DesignPlans[pi]
			s.planByID[plan.ID] = plan
			for si := range plan.Sections {
				sec := &plan.Sections[si]
				for qi := range sec.Questions {
					s.questionByID[sec.Questions[qi].ID] = &sec.Questions[qi]
				}
			}
			for ti := range plan.Templates {
				s.templateByID[plan.Templates[ti].ID] = &plan.Templates[ti]
			}
		}
	}
}

// Category returns the category with the given id.
func (s *Snapshot) Category(id uuid.UUID) (*models.Category, bool) {
	c, ok := s.categoryByID[id]
	return c, ok
}

// CategoryBySlug returns the category with the given slug.
func (s *Snapshot) CategoryBySlug(slug string) (*models.Category, bool) {
	c, ok := s.categoryBySlug[slug]
	return c, ok
}

// Attribute returns the attribute with the given id.
func (s *Snapshot) Attribute(id uuid.UUID) (*models.CategoryAttribute, bool) {
	a, ok := s.attributeByID[id]
	return a, ok
}

// Plan returns the design plan with the given id.
func (s *Snapshot) Plan(id uuid.UUID) (*models.DesignPlan, bool) {
	p, ok := s.planByID[id]
	return p, ok
}

// Question returns the question with the given id.
func (s *Snapshot) Question(id uuid.UUID) (*models.DesignQuestion, bool) {
	q, ok := s.questionByID[id]
	return q, ok
}

// Template returns the design template with the given id.
func (s *Snapshot) Template(id uuid.UUID) (*models.DesignTemplate, bool) {
	t, ok := s.templateByID[id]
	return t, ok
}

// PlanQuestions returns the plan's questions flattened across sections,
// in display order. This is the evaluation order of the questionnaire.
func (s *Snapshot) PlanQuestions(planID uuid.UUID) []models.DesignQuestion {
	plan, ok := s.planByID[planID]
	if !ok {
		return nil
	}
	var out []models.DesignQuestion
	for si := range plan.Sections {
		out = append(out, plan.Sections[si].Questions...)
	}
	return out
}

// ActiveCategories returns active categories in display order.
func (s *Snapshot) ActiveCategories() []models.Category {
	var out []models.Category
	for _, c := range s.Categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// Marshal serializes the snapshot payload for persistence.
func (s *Snapshot) Marshal() ([]byte, error) {
	raw, err := json.Marshal(s.Categories)
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal snapshot: %w", err)
	}
	return raw, nil
}

// UnmarshalSnapshot restores a snapshot from its persisted payload.
func UnmarshalSnapshot(version int64, createdAt time.Time, raw []byte) (*Snapshot, error) {
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal snapshot %d: %w", version, err)
	}
	return NewSnapshot(version, createdAt, categories), nil
}

// CloneCategories deep-copies the snapshot's categories for mutation.
// Admin writes edit the copy, validate it and publish a new version; the
// snapshot itself stays immutable.
func (s *Snapshot) CloneCategories() ([]models.Category, error) {
	raw, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	var out []models.Category
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("catalog: clone categories: %w", err)
	}
	return out, nil
}
