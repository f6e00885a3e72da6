package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahdiyarhamdi/sheetaro/internal/dto"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers/common"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
)

// PaymentHandler serves the card-to-card payment endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Initiate handles POST /api/payments.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.payments.Initiate(c.Request.Context(), req.OrderID, userID, req.Purpose)
	if err != nil {
		_ = c.Error(err)
		return
	}

	card := h.payments.Card()
	common.RespondJSON(c, http.StatusCreated, dto.PaymentResponse{
		Payment: p,
		Card:    &dto.CardResponse{Number: card.Number, Holder: card.Holder},
	})
}

// UploadReceipt handles POST /api/payments/:id/receipt. The receipt file
// must be uploaded through the media endpoint first; the body carries its
// stored path.
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req struct {
		ReceiptPath string `json:"receipt_path" binding:"required"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.payments.UploadReceipt(c.Request.Context(), paymentID, userID, req.ReceiptPath)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PaymentResponse{Payment: p})
}

// ListByOrder handles GET /api/orders/:id/payments.
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
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

	payments, err := h.payments.ListByOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PaymentListResponse{Payments: payments})
}

// ReviewQueue handles GET /api/admin/payments.
func (h *PaymentHandler) ReviewQueue(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	payments, err := h.payments.ReviewQueue(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PaymentListResponse{Payments: payments})
}

// Approve handles POST /api/admin/payments/:id/approve.
func (h *PaymentHandler) Approve(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	p, err := h.payments.Approve(c.Request.Context(), paymentID, adminID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PaymentResponse{Payment: p})
}

// Reject handles POST /api/admin/payments/:id/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req dto.RejectPaymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.payments.Reject(c.Request.Context(), paymentID, adminID, req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PaymentResponse{Payment: p})
}
