package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/dto"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers/common"
	"github.com/mahdiyarhamdi/sheetaro/internal/order"
	"github.com/mahdiyarhamdi/sheetaro/internal/questionnaire"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new handler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Quote handles POST /api/orders/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.orders.Quote(c.Request.Context(), service.CreateOrderInput{
		CategoryID:          req.CategoryID,
		PlanID:              req.PlanID,
		Quantity:            req.Quantity,
		Selections:          req.Selections,
		ValidationRequested: req.ValidationRequested,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, quote)
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req dto.CreateOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	answers, err := decodeAnswers(req.Answers)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, problems, err := h.orders.CreateOrder(c.Request.Context(), userID, service.CreateOrderInput{
		CategoryID:          req.CategoryID,
		PlanID:              req.PlanID,
		Quantity:            req.Quantity,
		Selections:          req.Selections,
		ValidationRequested: req.ValidationRequested,
		ShippingAddress:     req.ShippingAddress,
		CustomerNotes:       req.CustomerNotes,
		TemplateID:          req.TemplateID,
		LogoPath:            req.LogoPath,
		DesignFilePath:      req.DesignFilePath,
		Answers:             answers,
	})
	if err != nil {
		if len(problems) > 0 {
			common.RespondJSON(c, http.StatusBadRequest, gin.H{
				"error":    "questionnaire submission rejected",
				"problems": problems,
			})
			return
		}
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, dto.OrderResponse{Order: o})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}
	role, _ := common.CurrentUserRole(c)

	o, err := h.orders.GetOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	answers, err := h.orders.GetAnswers(c.Request.Context(), orderID, userID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderResponse{Order: o, Answers: answers})
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListMyOrders(c.Request.Context(), userID, c.Query("status"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderListResponse{Orders: orders, Limit: limit, Offset: offset})
}

// PrintQueue handles GET /api/print/queue.
func (h *OrderHandler) PrintQueue(c *gin.Context) {
	shopID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListPrintQueue(c.Request.Context(), shopID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderListResponse{Orders: orders, Limit: limit, Offset: offset})
}

// ListByStatus handles GET /api/admin/orders?status=...
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListByStatus(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderListResponse{Orders: orders, Limit: limit, Offset: offset})
}

// Transition handles POST /api/orders/:id/transition.
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req dto.TransitionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Transition(c.Request.Context(), orderID, order.Action(req.Action), service.TransitionInput{
		ActorID:       userID,
		ActorRole:     role,
		DefectReport:  req.DefectReport,
		TrackingCode:  req.TrackingCode,
		DraftFilePath: req.DraftFilePath,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderResponse{Order: o})
}

// ResubmitAnswers handles PUT /api/orders/:id/answers.
func (h *OrderHandler) ResubmitAnswers(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
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

	problems, err := h.orders.ResubmitQuestionnaire(c.Request.Context(), orderID, userID, answers)
	if err != nil {
		if len(problems) > 0 {
			common.RespondJSON(c, http.StatusBadRequest, gin.H{
				"error":    "questionnaire submission rejected",
				"problems": problems,
			})
			return
		}
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.MessageResponse{Message: "answers updated"})
}

// AssignStaff handles POST /api/admin/orders/:id/assign.
func (h *OrderHandler) AssignStaff(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.AssignStaffRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.AssignStaff(c.Request.Context(), orderID, req.StaffID, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.OrderResponse{Order: o})
}

// decodeAnswers converts the wire answer map into engine answers.
func decodeAnswers(raw map[string]dto.AnswerPayload) (map[uuid.UUID]questionnaire.Answer, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[uuid.UUID]questionnaire.Answer, len(raw))
	for key, payload := range raw {
		qid, err := uuid.Parse(key)
		if err != nil {
			return nil, common.ErrInvalidUUID
		}
		out[qid] = questionnaire.Answer{
			Text:     payload.Text,
			Values:   payload.Values,
			FileName: payload.FilePath,
			FileSize: payload.FileSize,
		}
	}
	return out, nil
}
