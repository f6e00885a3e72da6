package payment

import (
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// The card-to-card verification lifecycle:
//
//	PENDING -> AWAITING_APPROVAL   receipt uploaded
//	AWAITING_APPROVAL -> SUCCESS   admin approves
//	AWAITING_APPROVAL -> FAILED    admin rejects with a reason
//	FAILED -> AWAITING_APPROVAL    customer re-uploads a receipt
//
// Only SUCCESS payments satisfy order payment gates.

// NextOnReceipt resolves the status after a receipt upload.
func NextOnReceipt(current string) (string, error) {
	switch current {
	case models.PaymentStatusPending, models.PaymentStatusFailed:
		return models.PaymentStatusAwaitingApproval, nil
	case models.PaymentStatusAwaitingApproval:
		return "", apperror.New(apperror.ErrCodeForbiddenTransition,
			"a receipt is already awaiting approval")
	default:
		return "", apperror.New(apperror.ErrCodeAlreadyResolved,
			"the payment is already resolved")
	}
}

// NextOnDecision resolves the status of an admin approve/reject decision.
// A payment that already left AWAITING_APPROVAL reports AlreadyResolved so
// concurrent decisions are honored at most once.
func NextOnDecision(current string, approve bool) (string, error) {
	switch current {
	case models.PaymentStatusAwaitingApproval:
		if approve {
			return models.PaymentStatusSuccess, nil
		}
		return models.PaymentStatusFailed, nil
	case models.PaymentStatusSuccess, models.PaymentStatusFailed:
		return "", apperror.New(apperror.ErrCodeAlreadyResolved,
			"the payment is already resolved")
	default:
		return "", apperror.New(apperror.ErrCodeForbiddenTransition,
			"no receipt has been uploaded yet")
	}
}
