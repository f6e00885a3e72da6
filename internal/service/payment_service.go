package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/payment"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
	"github.com/mahdiyarhamdi/sheetaro/internal/validation"
)

// PaymentRepo describes the storage dependencies of PaymentService.
type PaymentRepo interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	ListAwaitingApproval(ctx context.Context, limit, offset int) ([]models.Payment, error)
	AttachReceipt(ctx context.Context, id uuid.UUID, receiptPath string) (*models.Payment, error)
	Resolve(ctx context.Context, id uuid.UUID, status string, reason *string, resolvedBy uuid.UUID) (*models.Payment, error)
}

// OrderReader is the minimal order access PaymentService needs.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// CardDetails is the destination of card-to-card transfers.
type CardDetails struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
}

// PaymentService runs the manual card-to-card verification flow: the
// customer transfers money, uploads the bank receipt and an admin
// approves or rejects it.
type PaymentService struct {
	repo          PaymentRepo
	orders        OrderReader
	notifications *NotificationService
	card          CardDetails
}

// NewPaymentService creates the service.
func NewPaymentService(repo PaymentRepo, orders OrderReader, notifications *NotificationService, card CardDetails) *PaymentService {
	return &PaymentService{
		repo:          repo,
		orders:        orders,
		notifications: notifications,
		card:          card,
	}
}

// Card returns the transfer destination shown to customers.
func (s *PaymentService) Card() CardDetails {
	return s.card
}

// Initiate opens a PENDING payment for one purpose of the order. The
// amount comes from the order's pinned pricing, never from the client.
func (s *PaymentService) Initiate(ctx context.Context, orderID, customerID uuid.UUID, purpose string) (*models.Payment, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, apperror.ErrOrderNotFound
	}
	if o.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeForbiddenTransition, "the order is closed")
	}

	amount, err := amountForPurpose(o, purpose)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		OrderID:    orderID,
		CustomerID: customerID,
		Purpose:    purpose,
		Amount:     amount,
		Status:     models.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"payment_id": p.ID,
		"order_id":   orderID,
		"purpose":    purpose,
		"amount":     amount,
	}).Info("payment: initiated")
	return p, nil
}

// UploadReceipt attaches the bank receipt and queues the payment for
// admin review. Re-uploads after a rejection are allowed.
func (s *PaymentService) UploadReceipt(ctx context.Context, paymentID, customerID uuid.UUID, receiptPath string) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}
	if p.CustomerID != customerID {
		return nil, apperror.ErrPaymentNotFound
	}

	if _, err := payment.NextOnReceipt(p.Status); err != nil {
		return nil, err
	}

	updated, err := s.repo.AttachReceipt(ctx, paymentID, receiptPath)
	if err != nil {
		if errors.Is(err, repository.ErrNoReceiptPending) {
			// Lost a race with another upload or an admin decision.
			return nil, apperror.New(apperror.ErrCodeConflict, "the payment changed underneath this request")
		}
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.NotifyAdmins(EventPaymentReceipt, map[string]any{
			"payment_id": updated.ID,
			"order_id":   updated.OrderID,
			"purpose":    updated.Purpose,
			"amount":     updated.Amount,
		})
	}
	return updated, nil
}

// Approve marks a reviewed payment SUCCESS. Concurrent decisions resolve
// at most once; the loser sees AlreadyResolved.
func (s *PaymentService) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*models.Payment, error) {
	return s.resolve(ctx, paymentID, adminID, true, nil)
}

// Reject marks a reviewed payment FAILED with a reason; the customer may
// upload a corrected receipt afterwards.
func (s *PaymentService) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*models.Payment, error) {
	if err := validation.ValidateRejectReason(reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	return s.resolve(ctx, paymentID, adminID, false, &reason)
}

func (s *PaymentService) resolve(ctx context.Context, paymentID, adminID uuid.UUID, approve bool, reason *string) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	next, err := payment.NextOnDecision(p.Status, approve)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Resolve(ctx, paymentID, next, reason, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, apperror.New(apperror.ErrCodeAlreadyResolved, "the payment is already resolved")
		}
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"payment_id": updated.ID,
		"order_id":   updated.OrderID,
		"status":     updated.Status,
		"admin":      adminID,
	}).Info("payment: resolved")

	if s.notifications != nil {
		s.notifications.NotifyUser(updated.CustomerID, EventPaymentResolved, map[string]any{
			"payment_id": updated.ID,
			"order_id":   updated.OrderID,
			"status":     updated.Status,
			"reason":     updated.RejectReason,
		})
	}
	return updated, nil
}

// ListByOrder returns the payments of an order visible to the actor.
func (s *PaymentService) ListByOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) ([]models.Payment, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if actorRole != models.RoleAdmin && o.CustomerID != actorID {
		return nil, apperror.ErrOrderNotFound
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// ReviewQueue returns payments awaiting an admin decision.
func (s *PaymentService) ReviewQueue(ctx context.Context, limit, offset int) ([]models.Payment, error) {
	return s.repo.ListAwaitingApproval(ctx, normalizeLimit(limit), offset)
}

// amountForPurpose maps a purpose to the order's pinned price for it.
func amountForPurpose(o *models.Order, purpose string) (int64, error) {
	var amount int64
	switch purpose {
	case models.PaymentPurposeValidation:
		amount = o.ValidationPrice
	case models.PaymentPurposeDesign:
		amount = o.DesignPrice
	case models.PaymentPurposeFix:
		amount = o.FixPrice
	case models.PaymentPurposePrint:
		amount = o.PrintPrice
	default:
		return 0, apperror.Newf(apperror.ErrCodeBadRequest, "purpose %q cannot be paid against an order", purpose)
	}
	if amount <= 0 {
		return 0, apperror.Newf(apperror.ErrCodeBadRequest, "the order has nothing to pay for %s", purpose)
	}
	return amount, nil
}
