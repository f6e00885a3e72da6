package questionnaire

import (
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// SubmissionProblem ties a validation failure to its question.
type SubmissionProblem struct {
	QuestionID uuid.UUID `json:"question_id"`
	Failure    Failure   `json:"failure"`
}

// ValidateSubmission checks a full questionnaire submission. It is accepted
// only when every currently-visible required question carries a valid
// answer. The returned map contains answers for visible questions only:
// stale answers from now-hidden branches are discarded, never stored.
func (e *Engine) ValidateSubmission(
	questions []models.DesignQuestion,
	answers map[uuid.UUID]Answer,
) (map[uuid.UUID]Answer, []SubmissionProblem, error) {
	visible, err := e.VisibleQuestions(questions, answers)
	if err != nil {
		return nil, nil, err
	}

	var problems []SubmissionProblem
	accepted := make(map[uuid.UUID]Answer, len(visible))

	for i := range visible {
		q := &visible[i]
		answer, has := answers[q.ID]
		if !has || answer.IsEmpty() {
			if q.IsRequired {
				problems = append(problems, SubmissionProblem{
					QuestionID: q.ID,
					Failure:    Failure{Kind: models.FailureInvalidFormat, Message: "an answer is required"},
				})
			}
			continue
		}
		if failure := e.ValidateAnswer(q, answer); failure != nil {
			problems = append(problems, SubmissionProblem{QuestionID: q.ID, Failure: *failure})
			continue
		}
		accepted[q.ID] = answer
	}

	if len(problems) > 0 {
		return nil, problems, apperror.New(apperror.ErrCodeValidationFailed, "questionnaire submission rejected")
	}
	return accepted, nil, nil
}
