package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListAwaitingApproval(ctx context.Context, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) AttachReceipt(ctx context.Context, id uuid.UUID, receiptPath string) (*models.Payment, error) {
	args := m.Called(ctx, id, receiptPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Resolve(ctx context.Context, id uuid.UUID, status string, reason *string, resolvedBy uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id, status, reason, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type mockOrderReader struct {
	mock.Mock
}

func (m *mockOrderReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func newTestPaymentService(repo *mockPaymentRepo, orders *mockOrderReader) *PaymentService {
	return NewPaymentService(repo, orders, nil, CardDetails{Number: "6037-0000-0000-0000", Holder: "Sheetaro"})
}

func TestPaymentService_Initiate_AmountFromPinnedPrices(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     models.OrderStatusPending,
		PrintPrice: 20500000,
	}
	orders.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Purpose == models.PaymentPurposePrint &&
			p.Amount == int64(20500000) &&
			p.Status == models.PaymentStatusPending
	})).Return(nil)

	p, err := svc.Initiate(ctx, o.ID, customerID, models.PaymentPurposePrint)
	assert.NoError(t, err)
	assert.Equal(t, int64(20500000), p.Amount)
	repo.AssertExpectations(t)
}

func TestPaymentService_Initiate_RejectsZeroAmount(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{ID: uuid.New(), CustomerID: customerID, Status: models.OrderStatusPending}
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.Initiate(ctx, o.ID, customerID, models.PaymentPurposeDesign)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
	repo.AssertNotCalled(t, "Create")
}

func TestPaymentService_Initiate_SubscriptionNotPayableAgainstOrder(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{ID: uuid.New(), CustomerID: customerID, Status: models.OrderStatusPending}
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.Initiate(ctx, o.ID, customerID, models.PaymentPurposeSubscription)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
}

func TestPaymentService_Initiate_ForeignOrderHidden(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	o := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), Status: models.OrderStatusPending, PrintPrice: 1000}
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.Initiate(ctx, o.ID, uuid.New(), models.PaymentPurposePrint)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPaymentService_UploadReceipt_QueuesForReview(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	p := &models.Payment{ID: uuid.New(), CustomerID: customerID, Status: models.PaymentStatusPending}
	updated := &models.Payment{ID: p.ID, CustomerID: customerID, Status: models.PaymentStatusAwaitingApproval}

	repo.On("GetByID", ctx, p.ID).Return(p, nil)
	repo.On("AttachReceipt", ctx, p.ID, "receipt/abc.jpg").Return(updated, nil)

	got, err := svc.UploadReceipt(ctx, p.ID, customerID, "receipt/abc.jpg")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAwaitingApproval, got.Status)
}

func TestPaymentService_UploadReceipt_BlockedWhileAwaitingApproval(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	p := &models.Payment{ID: uuid.New(), CustomerID: customerID, Status: models.PaymentStatusAwaitingApproval}
	repo.On("GetByID", ctx, p.ID).Return(p, nil)

	_, err := svc.UploadReceipt(ctx, p.ID, customerID, "receipt/abc.jpg")
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
	repo.AssertNotCalled(t, "AttachReceipt")
}

func TestPaymentService_UploadReceipt_LostRaceReportsConflict(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	p := &models.Payment{ID: uuid.New(), CustomerID: customerID, Status: models.PaymentStatusPending}
	repo.On("GetByID", ctx, p.ID).Return(p, nil)
	repo.On("AttachReceipt", ctx, p.ID, "receipt/abc.jpg").Return(nil, repository.ErrNoReceiptPending)

	_, err := svc.UploadReceipt(ctx, p.ID, customerID, "receipt/abc.jpg")
	assert.True(t, apperror.Is(err, apperror.ErrCodeConflict))
}

func TestPaymentService_Approve(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	adminID := uuid.New()
	p := &models.Payment{ID: uuid.New(), Status: models.PaymentStatusAwaitingApproval}
	resolved := &models.Payment{ID: p.ID, Status: models.PaymentStatusSuccess}

	repo.On("GetByID", ctx, p.ID).Return(p, nil)
	repo.On("Resolve", ctx, p.ID, models.PaymentStatusSuccess, (*string)(nil), adminID).Return(resolved, nil)

	got, err := svc.Approve(ctx, p.ID, adminID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, got.Status)
}

func TestPaymentService_Approve_ConcurrentDecisionLoses(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	adminID := uuid.New()
	p := &models.Payment{ID: uuid.New(), Status: models.PaymentStatusAwaitingApproval}

	repo.On("GetByID", ctx, p.ID).Return(p, nil)
	// The racing admin resolved first; the conditional write matched no rows.
	repo.On("Resolve", ctx, p.ID, models.PaymentStatusSuccess, (*string)(nil), adminID).
		Return(nil, repository.ErrAlreadyResolved)

	_, err := svc.Approve(ctx, p.ID, adminID)
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyResolved))
}

func TestPaymentService_Reject_RequiresReason(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	_, err := svc.Reject(ctx, uuid.New(), uuid.New(), "")
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
	repo.AssertNotCalled(t, "GetByID")
}

func TestPaymentService_ListByOrder_VisibilityByRole(t *testing.T) {
	repo := new(mockPaymentRepo)
	orders := new(mockOrderReader)
	svc := newTestPaymentService(repo, orders)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{ID: uuid.New(), CustomerID: customerID}
	orders.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("ListByOrder", ctx, o.ID).Return([]models.Payment{{ID: uuid.New()}}, nil)

	payments, err := svc.ListByOrder(ctx, o.ID, customerID, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = svc.ListByOrder(ctx, o.ID, uuid.New(), models.RoleCustomer)
	assert.True(t, apperror.IsNotFound(err))

	payments, err = svc.ListByOrder(ctx, o.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
	assert.Len(t, payments, 1)
}
