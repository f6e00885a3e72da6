package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

type fakeGates struct {
	success map[string]int
}

func (g fakeGates) HasSuccess(purpose string) bool { return g.success[purpose] > 0 }
func (g fakeGates) SuccessCount(purpose string) int { return g.success[purpose] }

func newTestOrder(status string, customerID uuid.UUID) *models.Order {
	return &models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     status,
		Version:    1,
		Quantity:   100,
		PrintPrice: 20500000,
	}
}

func customerInput(customerID uuid.UUID, gates PaymentGates) Input {
	return Input{ActorID: customerID, ActorRole: models.RoleCustomer, Now: time.Now(), Gates: gates}
}

func TestMachine_UnknownEdgeRejected(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusShipped, customerID)

	_, err := m.Next(o, nil, ActionStartDesign, customerInput(customerID, fakeGates{}))
	assert.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_RoleRejected(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusPending, uuid.New())

	in := Input{ActorID: uuid.New(), ActorRole: models.RoleDesigner, Now: time.Now()}
	_, err := m.Next(o, nil, ActionCancel, in)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_AdminBypassesRoleCheck(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusPending, uuid.New())

	in := Input{ActorID: uuid.New(), ActorRole: models.RoleAdmin, Now: time.Now()}
	next, err := m.Next(o, nil, ActionCancel, in)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, next)
}

func TestMachine_OtherCustomerRejected(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusPending, uuid.New())

	in := customerInput(uuid.New(), fakeGates{success: map[string]int{models.PaymentPurposePrint: 1}})
	_, err := m.Next(o, nil, ActionMarkReady, in)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_MarkReadyRequiresPrintPayment(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusPending, customerID)

	_, err := m.Next(o, nil, ActionMarkReady, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	next, err := m.Next(o, nil, ActionMarkReady,
		customerInput(customerID, fakeGates{success: map[string]int{models.PaymentPurposePrint: 1}}))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyForPrint, next)
}

func TestMachine_StartDesignGateSkippedWhenFree(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusPending, customerID)
	o.DesignPrice = 0

	next, err := m.Next(o, nil, ActionStartDesign, customerInput(customerID, fakeGates{}))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusDesigning, next)

	o.DesignPrice = 500000
	_, err = m.Next(o, nil, ActionStartDesign, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_ReportDefectsOnlyByAssignedValidator(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusAwaitingValidation, uuid.New())
	validatorID := uuid.New()
	o.AssignedValidatorID = &validatorID

	stranger := Input{ActorID: uuid.New(), ActorRole: models.RoleValidator, Now: time.Now()}
	_, err := m.Next(o, nil, ActionReportDefects, stranger)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	assigned := Input{ActorID: validatorID, ActorRole: models.RoleValidator, Now: time.Now()}
	next, err := m.Next(o, nil, ActionReportDefects, assigned)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsAction, next)
}

func TestMachine_AcceptPrintOnlyByOfferedShop(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusReadyForPrint, uuid.New())
	shopID := uuid.New()
	expires := time.Now().Add(30 * time.Minute)
	o.OfferedPrintShopID = &shopID
	o.OfferExpiresAt = &expires

	other := Input{ActorID: uuid.New(), ActorRole: models.RolePrintShop, Now: time.Now()}
	_, err := m.Next(o, nil, ActionAcceptPrint, other)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	offered := Input{ActorID: shopID, ActorRole: models.RolePrintShop, Now: time.Now()}
	next, err := m.Next(o, nil, ActionAcceptPrint, offered)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPrinting, next)
}

func TestMachine_AcceptPrintRejectsExpiredOffer(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusReadyForPrint, uuid.New())
	shopID := uuid.New()
	expired := time.Now().Add(-time.Minute)
	o.OfferedPrintShopID = &shopID
	o.OfferExpiresAt = &expired

	in := Input{ActorID: shopID, ActorRole: models.RolePrintShop, Now: time.Now()}
	_, err := m.Next(o, nil, ActionAcceptPrint, in)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_SemiPrivateRevisionQuota(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusDesigning, customerID)
	three := 3
	o.MaxRevisions = &three

	plan := &models.DesignPlan{Kind: models.PlanKindSemiPrivate}

	// Three free rounds pass.
	for i := 0; i < 3; i++ {
		o.RevisionCount = i
		next, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusNeedsAction, next)
	}

	// The fourth is rejected until a FIX payment succeeds.
	o.RevisionCount = 3
	_, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeRevisionQuotaExceeded))

	paid := fakeGates{success: map[string]int{models.PaymentPurposeFix: 1}}
	next, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, paid))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsAction, next)

	// One payment buys exactly one extra round.
	o.RevisionCount = 4
	_, err = m.Next(o, plan, ActionRequestRevision, customerInput(customerID, paid))
	assert.True(t, apperror.Is(err, apperror.ErrCodeRevisionQuotaExceeded))
}

func TestMachine_PrivateRevisionWindow(t *testing.T) {
	window := 30 * 24 * time.Hour
	m := NewMachine(window)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusDesigning, customerID)
	plan := &models.DesignPlan{Kind: models.PlanKindPrivate}

	// No draft yet.
	_, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	firstDraft := time.Now().Add(-10 * 24 * time.Hour)
	o.FirstDraftAt = &firstDraft
	o.RevisionCount = 17 // unlimited inside the window
	next, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusNeedsAction, next)

	old := time.Now().Add(-31 * 24 * time.Hour)
	o.FirstDraftAt = &old
	_, err = m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeRevisionWindowExpired))
}

func TestMachine_PublicPlanHasNoRevisionCycle(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusDesigning, customerID)
	plan := &models.DesignPlan{Kind: models.PlanKindPublic}

	_, err := m.Next(o, plan, ActionRequestRevision, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestMachine_ValidationFlow(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	customerID := uuid.New()
	o := newTestOrder(models.OrderStatusPending, customerID)

	// Validation is payment-gated.
	_, err := m.Next(o, nil, ActionRequestValidation, customerInput(customerID, fakeGates{}))
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	paid := fakeGates{success: map[string]int{models.PaymentPurposeValidation: 1}}
	next, err := m.Next(o, nil, ActionRequestValidation, customerInput(customerID, paid))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusAwaitingValidation, next)

	// Accepting the fix after defects requires a FIX payment by the validator.
	o.Status = models.OrderStatusNeedsAction
	validatorID := uuid.New()
	o.AssignedValidatorID = &validatorID
	in := Input{ActorID: validatorID, ActorRole: models.RoleValidator, Now: time.Now(), Gates: fakeGates{}}
	_, err = m.Next(o, nil, ActionAcceptFix, in)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))

	in.Gates = fakeGates{success: map[string]int{
		models.PaymentPurposeFix:   1,
		models.PaymentPurposePrint: 1,
	}}
	next, err = m.Next(o, nil, ActionAcceptFix, in)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyForPrint, next)
}

func TestMachine_AcceptFixRequiresPrintPayment(t *testing.T) {
	m := NewMachine(30 * 24 * time.Hour)
	o := newTestOrder(models.OrderStatusNeedsAction, uuid.New())
	validatorID := uuid.New()
	o.AssignedValidatorID = &validatorID

	// A paid FIX alone must not open the road to printing: accept_fix lands
	// on READY_FOR_PRINT, from where a shop could accept without any PRINT
	// payment ever succeeding.
	fixOnly := Input{ActorID: validatorID, ActorRole: models.RoleValidator, Now: time.Now(),
		Gates: fakeGates{success: map[string]int{models.PaymentPurposeFix: 1}}}
	_, err := m.Next(o, nil, ActionAcceptFix, fixOnly)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
	assert.Contains(t, err.Error(), models.PaymentPurposePrint)

	bothPaid := Input{ActorID: validatorID, ActorRole: models.RoleValidator, Now: time.Now(),
		Gates: fakeGates{success: map[string]int{
			models.PaymentPurposeFix:   1,
			models.PaymentPurposePrint: 1,
		}}}
	next, err := m.Next(o, nil, ActionAcceptFix, bothPaid)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyForPrint, next)
}

func TestMachine_EveryEdgeIntoReadyForPrintIsPrintGated(t *testing.T) {
	for key, e := range transitions {
		if e.to != models.OrderStatusReadyForPrint {
			continue
		}
		assert.Contains(t, e.gates, models.PaymentPurposePrint,
			"edge %s/%s reaches READY_FOR_PRINT without a PRINT gate", key.from, key.action)
	}
}

func TestMachine_TerminalStatusesHaveNoEdges(t *testing.T) {
	edges := Edges()
	assert.Empty(t, edges[models.OrderStatusDelivered])
	assert.Empty(t, edges[models.OrderStatusCancelled])
}
