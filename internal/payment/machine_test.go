package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

func TestNextOnReceipt(t *testing.T) {
	next, err := NextOnReceipt(models.PaymentStatusPending)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAwaitingApproval, next)

	// A rejected payment accepts a fresh receipt.
	next, err = NextOnReceipt(models.PaymentStatusFailed)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAwaitingApproval, next)

	_, err = NextOnReceipt(models.PaymentStatusAwaitingApproval)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	_, err = NextOnReceipt(models.PaymentStatusSuccess)
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyResolved))
}

func TestNextOnDecision(t *testing.T) {
	next, err := NextOnDecision(models.PaymentStatusAwaitingApproval, true)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, next)

	next, err = NextOnDecision(models.PaymentStatusAwaitingApproval, false)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, next)

	// A second decision on a resolved payment is refused, whichever way
	// the first one went.
	_, err = NextOnDecision(models.PaymentStatusSuccess, true)
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyResolved))
	_, err = NextOnDecision(models.PaymentStatusFailed, true)
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyResolved))

	_, err = NextOnDecision(models.PaymentStatusPending, true)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}
