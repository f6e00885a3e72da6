package catalog

import (
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Validate checks every catalog invariant over a candidate configuration.
// It is called on each admin write before a new version is published; a
// failing configuration is rejected whole and the published catalog stays
// unchanged.
func Validate(categories []models.Category) error {
	categorySlugs := make(map[string]struct{}, len(categories))

	for ci := range categories {
		cat := &categories[ci]
		if cat.Slug == "" {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "category %s: empty slug", cat.ID)
		}
		if _, dup := categorySlugs[cat.Slug]; dup {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "duplicate category slug %q", cat.Slug)
		}
		categorySlugs[cat.Slug] = struct{}{}

		if cat.BasePrice < 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "category %q: negative base price", cat.Slug)
		}

		if err := validateAttributes(cat); err != nil {
			return err
		}
		if err := validatePlans(cat); err != nil {
			return err
		}
	}

	return nil
}

func validateAttributes(cat *models.Category) error {
	slugs := make(map[string]struct{}, len(cat.Attributes))
	for ai := range cat.Attributes {
		attr := &cat.Attributes[ai]
		if attr.CategoryID != cat.ID {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"attribute %q does not belong to category %q", attr.Slug, cat.Slug)
		}
		if _, dup := slugs[attr.Slug]; dup {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"category %q: duplicate attribute slug %q", cat.Slug, attr.Slug)
		}
		slugs[attr.Slug] = struct{}{}

		switch attr.Kind {
		case models.AttributeKindFreeText:
			if len(attr.Options) > 0 {
				return apperror.Newf(apperror.ErrCodeConfigInvalid,
					"attribute %q: free-text attribute must not carry options", attr.Slug)
			}
		case models.AttributeKindSingleSelect:
			if len(attr.Options) == 0 {
				return apperror.Newf(apperror.ErrCodeConfigInvalid,
					"attribute %q: single-select attribute needs at least one option", attr.Slug)
			}
			values := make(map[string]struct{}, len(attr.Options))
			for _, opt := range attr.Options {
				if _, dup := values[opt.Value]; dup {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"attribute %q: duplicate option value %q", attr.Slug, opt.Value)
				}
				values[opt.Value] = struct{}{}
			}
		default:
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"attribute %q: unknown kind %q", attr.Slug, attr.Kind)
		}
	}
	return nil
}

func validatePlans(cat *models.Category) error {
	slugs := make(map[string]struct{}, len(cat.DesignPlans))
	for pi := range cat.DesignPlans {
		plan := &cat.DesignPlans[pi]
		if plan.CategoryID != cat.ID {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q does not belong to category %q", plan.Slug, cat.Slug)
		}
		if _, dup := slugs[plan.Slug]; dup {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"category %q: duplicate plan slug %q", cat.Slug, plan.Slug)
		}
		slugs[plan.Slug] = struct{}{}

		if _, ok := models.ValidPlanKinds[plan.Kind]; !ok {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "plan %q: unknown kind %q", plan.Slug, plan.Kind)
		}
		if plan.Price < 0 || plan.RevisionPrice < 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "plan %q: negative price", plan.Slug)
		}
		if plan.MaxRevisions != nil && *plan.MaxRevisions < 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid, "plan %q: negative max revisions", plan.Slug)
		}

		// Business rule: a plan never exposes both a questionnaire and a
		// template gallery.
		if plan.HasQuestionnaire && plan.HasTemplates {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: has_questionnaire and has_templates are mutually exclusive", plan.Slug)
		}
		if !plan.HasQuestionnaire && sectionQuestionCount(plan) > 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: questions configured without has_questionnaire", plan.Slug)
		}
		if !plan.HasTemplates && len(plan.Templates) > 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: templates configured without has_templates", plan.Slug)
		}

		if err := validateQuestions(plan); err != nil {
			return err
		}
		if err := validateTemplates(plan); err != nil {
			return err
		}
	}
	return nil
}

func sectionQuestionCount(plan *models.DesignPlan) int {
	n := 0
	for si := range plan.Sections {
		n += len(plan.Sections[si].Questions)
	}
	return n
}

// validateQuestions checks per-question shape and the dependency graph.
// A dependency may only reference an earlier question of the same plan,
// which makes the graph acyclic by construction.
func validateQuestions(plan *models.DesignPlan) error {
	seen := make(map[uuid.UUID]struct{})
	for si := range plan.Sections {
		sec := &plan.Sections[si]
		for qi := range sec.Questions {
			q := &sec.Questions[qi]
			if q.PlanID != plan.ID {
				return apperror.Newf(apperror.ErrCodeConfigInvalid,
					"plan %q: question %s does not belong to the plan", plan.Slug, q.ID)
			}
			if _, ok := models.ValidQuestionKinds[q.Kind]; !ok {
				return apperror.Newf(apperror.ErrCodeConfigInvalid,
					"plan %q: question %s has unknown kind %q", plan.Slug, q.ID, q.Kind)
			}

			switch q.Kind {
			case models.QuestionKindSingleChoice, models.QuestionKindMultiChoice:
				if len(q.Options) == 0 {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"plan %q: choice question %s needs at least one option", plan.Slug, q.ID)
				}
			default:
				if len(q.Options) > 0 {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"plan %q: question %s of kind %s must not carry options", plan.Slug, q.ID, q.Kind)
				}
			}

			if q.DependsOnQuestionID != nil {
				if len(q.DependsOnValues) == 0 {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"plan %q: question %s has a dependency without values", plan.Slug, q.ID)
				}
				if *q.DependsOnQuestionID == q.ID {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"plan %q: question %s depends on itself (cyclic dependency)", plan.Slug, q.ID)
				}
				if _, earlier := seen[*q.DependsOnQuestionID]; !earlier {
					return apperror.Newf(apperror.ErrCodeConfigInvalid,
						"plan %q: question %s depends on a question that is not earlier in the same plan (cyclic or cross-plan dependency)",
						plan.Slug, q.ID)
				}
			}
			seen[q.ID] = struct{}{}
		}
	}
	return nil
}

func validateTemplates(plan *models.DesignPlan) error {
	for ti := range plan.Templates {
		t := &plan.Templates[ti]
		if t.PlanID != plan.ID {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: template %s does not belong to the plan", plan.Slug, t.ID)
		}
		if t.SourceWidth <= 0 || t.SourceHeight <= 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: template %s has invalid source dimensions", plan.Slug, t.ID)
		}
		p := t.Placeholder
		if p.Width <= 0 || p.Height <= 0 {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: template %s has an empty placeholder", plan.Slug, t.ID)
		}
		if p.X < 0 || p.Y < 0 || p.X+p.Width > t.SourceWidth || p.Y+p.Height > t.SourceHeight {
			return apperror.Newf(apperror.ErrCodeConfigInvalid,
				"plan %q: template %s placeholder out of source image bounds", plan.Slug, t.ID)
		}
	}
	return nil
}
