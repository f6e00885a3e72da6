package questionnaire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

func choiceQuestion(id uuid.UUID, values ...string) models.DesignQuestion {
	q := models.DesignQuestion{
		ID:       id,
		Kind:     models.QuestionKindSingleChoice,
		IsActive: true,
	}
	for _, v := range values {
		q.Options = append(q.Options, models.QuestionOption{Value: v})
	}
	return q
}

func TestEngine_VisibleQuestions_DependencyChain(t *testing.T) {
	e := NewEngine(10 << 20)

	hasLogoID := uuid.New()
	logoStyleID := uuid.New()
	logoColorID := uuid.New()

	logoStyle := choiceQuestion(logoStyleID, "modern", "classic")
	logoStyle.DependsOnQuestionID = &hasLogoID
	logoStyle.DependsOnValues = []string{"yes"}

	logoColor := models.DesignQuestion{
		ID: logoColorID, Kind: models.QuestionKindColorPicker, IsActive: true,
		DependsOnQuestionID: &logoStyleID, DependsOnValues: []string{"modern"},
	}

	questions := []models.DesignQuestion{choiceQuestion(hasLogoID, "yes", "no"), logoStyle, logoColor}

	// No answer yet: dependents stay hidden.
	visible, err := e.VisibleQuestions(questions, nil)
	assert.NoError(t, err)
	assert.Len(t, visible, 1)

	// Answering the root reveals the branch.
	visible, err = e.VisibleQuestions(questions, map[uuid.UUID]Answer{
		hasLogoID:   {Text: "yes"},
		logoStyleID: {Text: "modern"},
	})
	assert.NoError(t, err)
	assert.Len(t, visible, 3)

	// Flipping the root hides the whole chain even though the middle
	// question still has a matching answer.
	visible, err = e.VisibleQuestions(questions, map[uuid.UUID]Answer{
		hasLogoID:   {Text: "no"},
		logoStyleID: {Text: "modern"},
	})
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestEngine_VisibleQuestions_Idempotent(t *testing.T) {
	e := NewEngine(10 << 20)

	hasLogoID := uuid.New()
	logoStyle := choiceQuestion(uuid.New(), "modern", "classic")
	logoStyle.DependsOnQuestionID = &hasLogoID
	logoStyle.DependsOnValues = []string{"yes"}
	questions := []models.DesignQuestion{choiceQuestion(hasLogoID, "yes", "no"), logoStyle}

	answers := map[uuid.UUID]Answer{hasLogoID: {Text: "yes"}}

	// The same answer set resolves to the same ordered sequence every time;
	// evaluation must not depend on prior calls.
	first, err := e.VisibleQuestions(questions, answers)
	assert.NoError(t, err)
	second, err := e.VisibleQuestions(questions, answers)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_VisibleQuestions_MultiChoiceOverlap(t *testing.T) {
	e := NewEngine(10 << 20)

	channelsID := uuid.New()
	channels := models.DesignQuestion{
		ID: channelsID, Kind: models.QuestionKindMultiChoice, IsActive: true,
		Options: []models.QuestionOption{{Value: "print"}, {Value: "web"}},
	}
	webDetail := models.DesignQuestion{
		ID: uuid.New(), Kind: models.QuestionKindText, IsActive: true,
		DependsOnQuestionID: &channelsID, DependsOnValues: []string{"web"},
	}

	questions := []models.DesignQuestion{channels, webDetail}

	visible, err := e.VisibleQuestions(questions, map[uuid.UUID]Answer{
		channelsID: {Values: []string{"print", "web"}},
	})
	assert.NoError(t, err)
	assert.Len(t, visible, 2)

	visible, err = e.VisibleQuestions(questions, map[uuid.UUID]Answer{
		channelsID: {Values: []string{"print"}},
	})
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestEngine_VisibleQuestions_ForwardDependencyIsConfigError(t *testing.T) {
	e := NewEngine(10 << 20)

	laterID := uuid.New()
	dependent := models.DesignQuestion{
		ID: uuid.New(), Kind: models.QuestionKindText, IsActive: true,
		DependsOnQuestionID: &laterID, DependsOnValues: []string{"yes"},
	}

	_, err := e.VisibleQuestions(
		[]models.DesignQuestion{dependent, choiceQuestion(laterID, "yes")}, nil)
	assert.True(t, apperror.IsConfigInvalid(err))
}

func TestEngine_ValidateAnswer_Text(t *testing.T) {
	e := NewEngine(10 << 20)
	q := &models.DesignQuestion{
		Kind:  models.QuestionKindText,
		Rules: models.ValidationRules{MinLength: intPtr(3), MaxLength: intPtr(5)},
	}

	assert.Nil(t, e.ValidateAnswer(q, Answer{Text: "abcd"}))

	f := e.ValidateAnswer(q, Answer{Text: "ab"})
	assert.Equal(t, models.FailureTooShort, f.Kind)

	f = e.ValidateAnswer(q, Answer{Text: "abcdef"})
	assert.Equal(t, models.FailureTooLong, f.Kind)
}

func TestEngine_ValidateAnswer_Pattern(t *testing.T) {
	e := NewEngine(10 << 20)
	q := &models.DesignQuestion{
		Kind:  models.QuestionKindText,
		Rules: models.ValidationRules{Pattern: `^[A-Z]+$`},
	}

	assert.Nil(t, e.ValidateAnswer(q, Answer{Text: "ABC"}))
	f := e.ValidateAnswer(q, Answer{Text: "abc"})
	assert.Equal(t, models.FailurePatternMismatch, f.Kind)

	// Broken patterns are a configuration defect and never reject input.
	q.Rules.Pattern = `([`
	assert.Nil(t, e.ValidateAnswer(q, Answer{Text: "anything"}))
}

func TestEngine_ValidateAnswer_Number(t *testing.T) {
	e := NewEngine(10 << 20)
	q := &models.DesignQuestion{
		Kind:  models.QuestionKindNumber,
		Rules: models.ValidationRules{MinValue: floatPtr(1), MaxValue: floatPtr(10)},
	}

	assert.Nil(t, e.ValidateAnswer(q, Answer{Text: "5"}))
	// Thousands separators are stripped before parsing.
	assert.Equal(t, models.FailureOutOfRange, e.ValidateAnswer(q, Answer{Text: "1,000"}).Kind)
	assert.Equal(t, models.FailureOutOfRange, e.ValidateAnswer(q, Answer{Text: "0"}).Kind)
	assert.Equal(t, models.FailureInvalidFormat, e.ValidateAnswer(q, Answer{Text: "five"}).Kind)
}

func TestEngine_ValidateAnswer_Choices(t *testing.T) {
	e := NewEngine(10 << 20)

	single := choiceQuestion(uuid.New(), "red", "blue")
	assert.Nil(t, e.ValidateAnswer(&single, Answer{Text: "red"}))
	assert.Equal(t, models.FailureInvalidFormat, e.ValidateAnswer(&single, Answer{Text: "green"}).Kind)

	multi := models.DesignQuestion{
		Kind:    models.QuestionKindMultiChoice,
		Options: []models.QuestionOption{{Value: "a"}, {Value: "b"}, {Value: "c"}},
		Rules:   models.ValidationRules{MinSelections: intPtr(2), MaxSelections: intPtr(3)},
	}
	assert.Nil(t, e.ValidateAnswer(&multi, Answer{Values: []string{"a", "b"}}))
	assert.Equal(t, models.FailureTooFewSelections,
		e.ValidateAnswer(&multi, Answer{Values: []string{"a"}}).Kind)
	assert.Equal(t, models.FailureInvalidFormat,
		e.ValidateAnswer(&multi, Answer{Values: []string{"a", "z"}}).Kind)
}

func TestEngine_ValidateAnswer_ColorAndDate(t *testing.T) {
	e := NewEngine(10 << 20)

	color := &models.DesignQuestion{Kind: models.QuestionKindColorPicker}
	assert.Nil(t, e.ValidateAnswer(color, Answer{Text: "#1A2B3C"}))
	assert.Nil(t, e.ValidateAnswer(color, Answer{Text: "1a2b3c"}))
	assert.Equal(t, models.FailureInvalidFormat, e.ValidateAnswer(color, Answer{Text: "#12"}).Kind)

	date := &models.DesignQuestion{Kind: models.QuestionKindDatePicker}
	assert.Nil(t, e.ValidateAnswer(date, Answer{Text: "2026-08-31"}))
	assert.Equal(t, models.FailureInvalidFormat, e.ValidateAnswer(date, Answer{Text: "31/08/2026"}).Kind)
}

func TestEngine_ValidateAnswer_File(t *testing.T) {
	e := NewEngine(1 << 20)

	q := &models.DesignQuestion{
		Kind:  models.QuestionKindFileUpload,
		Rules: models.ValidationRules{MaxFileSize: int64Ptr(1000), AllowedTypes: []string{"pdf"}},
	}

	assert.Nil(t, e.ValidateAnswer(q, Answer{FileName: "brief.pdf", FileSize: 500}))
	assert.Equal(t, models.FailureFileTooLarge,
		e.ValidateAnswer(q, Answer{FileName: "brief.pdf", FileSize: 2000}).Kind)
	assert.Equal(t, models.FailureUnsupportedFileType,
		e.ValidateAnswer(q, Answer{FileName: "brief.exe", FileSize: 500}).Kind)

	// Without explicit rules the engine falls back to the image defaults.
	img := &models.DesignQuestion{Kind: models.QuestionKindImageUpload}
	assert.Nil(t, e.ValidateAnswer(img, Answer{FileName: "logo.PNG", FileSize: 500}))
	assert.Equal(t, models.FailureUnsupportedFileType,
		e.ValidateAnswer(img, Answer{FileName: "logo.exe", FileSize: 500}).Kind)
}

func TestEngine_ValidateSubmission(t *testing.T) {
	e := NewEngine(10 << 20)

	rootID := uuid.New()
	branchID := uuid.New()
	root := choiceQuestion(rootID, "yes", "no")
	root.IsRequired = true
	branch := models.DesignQuestion{
		ID: branchID, Kind: models.QuestionKindText, IsActive: true, IsRequired: true,
		DependsOnQuestionID: &rootID, DependsOnValues: []string{"yes"},
	}
	questions := []models.DesignQuestion{root, branch}

	// Missing required answer rejects the submission.
	_, problems, err := e.ValidateSubmission(questions, map[uuid.UUID]Answer{})
	assert.True(t, apperror.IsValidationFailed(err))
	assert.Len(t, problems, 1)
	assert.Equal(t, rootID, problems[0].QuestionID)

	// Hidden branch is not required; its stale answer is discarded.
	accepted, problems, err := e.ValidateSubmission(questions, map[uuid.UUID]Answer{
		rootID:   {Text: "no"},
		branchID: {Text: "stale text from before the flip"},
	})
	assert.NoError(t, err)
	assert.Empty(t, problems)
	assert.Len(t, accepted, 1)
	assert.NotContains(t, accepted, branchID)

	// Visible branch must be answered.
	_, problems, err = e.ValidateSubmission(questions, map[uuid.UUID]Answer{
		rootID: {Text: "yes"},
	})
	assert.True(t, apperror.IsValidationFailed(err))
	assert.Len(t, problems, 1)
	assert.Equal(t, branchID, problems[0].QuestionID)

	accepted, _, err = e.ValidateSubmission(questions, map[uuid.UUID]Answer{
		rootID:   {Text: "yes"},
		branchID: {Text: "fresh"},
	})
	assert.NoError(t, err)
	assert.Len(t, accepted, 2)
}
