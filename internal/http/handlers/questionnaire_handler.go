package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahdiyarhamdi/sheetaro/internal/dto"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers/common"
	"github.com/mahdiyarhamdi/sheetaro/internal/questionnaire"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
)

// QuestionnaireHandler serves live questionnaire helpers: per-answer
// validation and visibility resolution as the customer fills the form.
type QuestionnaireHandler struct {
	catalog *service.CatalogService
	engine  *questionnaire.Engine
}

// NewQuestionnaireHandler creates a new handler.
func NewQuestionnaireHandler(catalog *service.CatalogService, engine *questionnaire.Engine) *QuestionnaireHandler {
	return &QuestionnaireHandler{catalog: catalog, engine: engine}
}

// ValidateAnswer handles POST /api/catalog/plans/:id/validate-answer.
func (h *QuestionnaireHandler) ValidateAnswer(c *gin.Context) {
	planID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.ValidateAnswerRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.catalog.PlanQuestions(c.Request.Context(), planID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	for i := range questions {
		if questions[i].ID != req.QuestionID {
			continue
		}
		failure := h.engine.ValidateAnswer(&questions[i], questionnaire.Answer{
			Text:     req.Answer.Text,
			Values:   req.Answer.Values,
			FileName: req.Answer.FilePath,
			FileSize: req.Answer.FileSize,
		})
		if failure != nil {
			common.RespondJSON(c, http.StatusOK, gin.H{"valid": false, "failure": failure})
			return
		}
		common.RespondJSON(c, http.StatusOK, gin.H{"valid": true})
		return
	}

	common.RespondError(c, http.StatusNotFound, "question not found in plan")
}

// VisibleQuestions handles POST /api/catalog/plans/:id/visible-questions.
// The client sends its current answers and receives the questions that
// should be shown, letting the form react to dependency changes.
func (h *QuestionnaireHandler) VisibleQuestions(c *gin.Context) {
	planID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.ResubmitAnswersRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	answers, err := decodeAnswers(req.Answers)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.catalog.PlanQuestions(c.Request.Context(), planID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	visible, err := h.engine.VisibleQuestions(questions, answers)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"questions": visible})
}
