package questionnaire

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Answer is a raw submitted answer before validation. Exactly one of the
// value carriers is meaningful per question kind: Text for text/number/
// color/date/scale/single-choice, Values for multi-choice, FileName and
// FileSize for uploads.
type Answer struct {
	Text     string   `json:"text,omitempty"`
	Values   []string `json:"values,omitempty"`
	FileName string   `json:"file_name,omitempty"`
	FileSize int64    `json:"file_size,omitempty"`
}

// IsEmpty reports whether the answer carries no value at all.
func (a Answer) IsEmpty() bool {
	return a.Text == "" && len(a.Values) == 0 && a.FileName == ""
}

// Failure is a structured validation failure for one answer.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Engine evaluates question visibility and validates answers against the
// per-question rule sets of a pinned catalog snapshot.
type Engine struct {
	maxUploadBytes  int64
	defaultImageExt []string
	defaultFileExt  []string
}

// NewEngine creates an engine with the upload ceiling shared with file
// storage and the default extension allow-lists.
func NewEngine(maxUploadBytes int64) *Engine {
	return &Engine{
		maxUploadBytes:  maxUploadBytes,
		defaultImageExt: []string{"jpg", "jpeg", "png", "gif", "svg"},
		defaultFileExt:  []string{"pdf", "ai", "psd", "png", "svg"},
	}
}

// VisibleQuestions returns the questions currently visible given the
// answers so far, in display order. Questions are evaluated in order; a
// dependency referencing a question that has not been evaluated yet is a
// configuration error, not a runtime condition.
func (e *Engine) VisibleQuestions(questions []models.DesignQuestion, answers map[uuid.UUID]Answer) ([]models.DesignQuestion, error) {
	evaluated := make(map[uuid.UUID]bool, len(questions)) // id -> visible
	var visible []models.DesignQuestion

	for i := range questions {
		q := questions[i]
		if !q.IsActive {
			evaluated[q.ID] = false
			continue
		}

		show := true
		if q.DependsOnQuestionID != nil {
			depVisible, seen := evaluated[*q.DependsOnQuestionID]
			if !seen {
				return nil, apperror.Newf(apperror.ErrCodeConfigInvalid,
					"question %s depends on a question evaluated later", q.ID)
			}
			if !depVisible {
				show = false
			} else {
				show = dependencySatisfied(q.DependsOnValues, answers[*q.DependsOnQuestionID])
			}
		}

		evaluated[q.ID] = show
		if show {
			visible = append(visible, q)
		}
	}

	return visible, nil
}

// dependencySatisfied reports whether the dependency answer is a member of
// the configured value set. Multi-choice answers satisfy on any overlap.
func dependencySatisfied(wanted []string, answer Answer) bool {
	if answer.IsEmpty() {
		return false
	}
	for _, w := range wanted {
		if answer.Text == w {
			return true
		}
		for _, v := range answer.Values {
			if v == w {
				return true
			}
		}
	}
	return false
}

// ValidateAnswer checks one answer against the question's rule set.
// A nil return means the answer is valid. An empty answer is valid here;
// required-ness is enforced at submission time.
func (e *Engine) ValidateAnswer(q *models.DesignQuestion, answer Answer) *Failure {
	if answer.IsEmpty() {
		return nil
	}

	switch q.Kind {
	case models.QuestionKindText, models.QuestionKindTextarea:
		return validateText(answer.Text, q.Rules)
	case models.QuestionKindNumber, models.QuestionKindScale:
		return validateNumber(answer.Text, q.Rules)
	case models.QuestionKindSingleChoice:
		return validateSingleChoice(answer.Text, q)
	case models.QuestionKindMultiChoice:
		return validateMultiChoice(answer.Values, q)
	case models.QuestionKindColorPicker:
		return validateColor(answer.Text)
	case models.QuestionKindDatePicker:
		return validateDate(answer.Text)
	case models.QuestionKindImageUpload:
		return e.validateFile(answer, q.Rules, e.defaultImageExt)
	case models.QuestionKindFileUpload:
		return e.validateFile(answer, q.Rules, e.defaultFileExt)
	}

	return &Failure{Kind: models.FailureInvalidFormat, Message: fmt.Sprintf("unknown question kind %q", q.Kind)}
}

func validateText(value string, rules models.ValidationRules) *Failure {
	length := utf8.RuneCountInString(value)
	if rules.MinLength != nil && length < *rules.MinLength {
		return &Failure{
			Kind:    models.FailureTooShort,
			Message: fmt.Sprintf("at least %d characters required", *rules.MinLength),
		}
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return &Failure{
			Kind:    models.FailureTooLong,
			Message: fmt.Sprintf("at most %d characters allowed", *rules.MaxLength),
		}
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		// An uncompilable pattern is a configuration defect; it must not
		// reject customer input at runtime.
		if err == nil && !re.MatchString(value) {
			return &Failure{Kind: models.FailurePatternMismatch, Message: "input does not match the required format"}
		}
	}
	return nil
}

func validateNumber(value string, rules models.ValidationRules) *Failure {
	num, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return &Failure{Kind: models.FailureInvalidFormat, Message: "a number is required"}
	}
	if rules.MinValue != nil && num < *rules.MinValue {
		return &Failure{
			Kind:    models.FailureOutOfRange,
			Message: fmt.Sprintf("value must be at least %v", *rules.MinValue),
		}
	}
	if rules.MaxValue != nil && num > *rules.MaxValue {
		return &Failure{
			Kind:    models.FailureOutOfRange,
			Message: fmt.Sprintf("value must be at most %v", *rules.MaxValue),
		}
	}
	return nil
}

func validateSingleChoice(value string, q *models.DesignQuestion) *Failure {
	for _, opt := range q.Options {
		if opt.Value == value {
			return nil
		}
	}
	return &Failure{Kind: models.FailureInvalidFormat, Message: fmt.Sprintf("%q is not a defined option", value)}
}

func validateMultiChoice(values []string, q *models.DesignQuestion) *Failure {
	rules := q.Rules
	if rules.MinSelections != nil && len(values) < *rules.MinSelections {
		return &Failure{
			Kind:    models.FailureTooFewSelections,
			Message: fmt.Sprintf("select at least %d options", *rules.MinSelections),
		}
	}
	if rules.MaxSelections != nil && len(values) > *rules.MaxSelections {
		return &Failure{
			Kind:    models.FailureTooManySelections,
			Message: fmt.Sprintf("select at most %d options", *rules.MaxSelections),
		}
	}

	defined := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		defined[opt.Value] = struct{}{}
	}
	for _, v := range values {
		if _, ok := defined[v]; !ok {
			return &Failure{Kind: models.FailureInvalidFormat, Message: fmt.Sprintf("%q is not a defined option", v)}
		}
	}
	return nil
}

func validateColor(value string) *Failure {
	if !hexColorRe.MatchString(value) {
		return &Failure{Kind: models.FailureInvalidFormat, Message: "a 6-digit hex color is required"}
	}
	return nil
}

func validateDate(value string) *Failure {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return &Failure{Kind: models.FailureInvalidFormat, Message: "a valid date in YYYY-MM-DD form is required"}
	}
	return nil
}

func (e *Engine) validateFile(answer Answer, rules models.ValidationRules, defaultExt []string) *Failure {
	ceiling := e.maxUploadBytes
	if rules.MaxFileSize != nil && *rules.MaxFileSize < ceiling {
		ceiling = *rules.MaxFileSize
	}
	if answer.FileSize > ceiling {
		return &Failure{
			Kind:    models.FailureFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %d byte limit", ceiling),
		}
	}

	allowed := rules.AllowedTypes
	if len(allowed) == 0 {
		allowed = defaultExt
	}
	ext := strings.ToLower(strings.TrimPrefix(extOf(answer.FileName), "."))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}
	return &Failure{
		Kind:    models.FailureUnsupportedFileType,
		Message: fmt.Sprintf("file type %q is not accepted", ext),
	}
}

func extOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
