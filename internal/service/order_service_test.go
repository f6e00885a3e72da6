package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/order"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/pricing"
	"github.com/mahdiyarhamdi/sheetaro/internal/questionnaire"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *models.Order, answers []models.QuestionAnswer) error {
	args := m.Called(ctx, o, answers)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, customerID, status, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListPrintQueue(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, shopID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ApplyTransition(ctx context.Context, o *models.Order, expectedVersion int64) error {
	args := m.Called(ctx, o, expectedVersion)
	return args.Error(0)
}

func (m *mockOrderRepo) GetAnswers(ctx context.Context, orderID uuid.UUID) ([]models.QuestionAnswer, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.QuestionAnswer), args.Error(1)
}

func (m *mockOrderRepo) ReplaceAnswers(ctx context.Context, orderID uuid.UUID, answers []models.QuestionAnswer) error {
	args := m.Called(ctx, orderID, answers)
	return args.Error(0)
}

func (m *mockOrderRepo) ListActivePrintShops(ctx context.Context) ([]models.PrintShop, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.PrintShop), args.Error(1)
}

// fakePaymentReader serves fixed SUCCESS counts per purpose.
type fakePaymentReader struct {
	counts map[string]int
}

func (f fakePaymentReader) HasSuccess(_ context.Context, _ uuid.UUID, purpose string) (bool, error) {
	return f.counts[purpose] > 0, nil
}

func (f fakePaymentReader) SuccessCount(_ context.Context, _ uuid.UUID, purpose string) (int, error) {
	return f.counts[purpose], nil
}

// fakeCatalogProvider serves one snapshot for every version.
type fakeCatalogProvider struct {
	snap *catalog.Snapshot
}

func (f fakeCatalogProvider) Latest(_ context.Context) (*catalog.Snapshot, error)            { return f.snap, nil }
func (f fakeCatalogProvider) Version(_ context.Context, _ int64) (*catalog.Snapshot, error) { return f.snap, nil }

// orderTestCatalog is a one-category catalog with an own-design plan.
func orderTestCatalog() (*catalog.Snapshot, uuid.UUID, uuid.UUID) {
	categoryID := uuid.New()
	planID := uuid.New()
	categories := []models.Category{{
		ID: categoryID, Slug: "stickers", Name: "Stickers", BasePrice: 1000, IsActive: true,
		DesignPlans: []models.DesignPlan{{
			ID: planID, CategoryID: categoryID, Slug: "own", Kind: models.PlanKindOwnDesign,
			HasFileUpload: true, IsActive: true,
		}},
	}}
	return catalog.NewSnapshot(5, time.Now(), categories), categoryID, planID
}

func newTestOrderService(repo *mockOrderRepo, payments PaymentReader, snap *catalog.Snapshot) *OrderService {
	return NewOrderService(
		repo,
		payments,
		fakeCatalogProvider{snap: snap},
		order.NewMachine(30*24*time.Hour),
		pricing.NewCalculator(50000, 100000),
		questionnaire.NewEngine(10<<20),
		nil,
		nil,
		30*time.Minute,
	)
}

func TestOrderService_CreateOrder_PinsCatalogVersion(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()
	customerID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Order"), []models.QuestionAnswer(nil)).Return(nil)

	design := "design/abc.pdf"
	address := "12 Azadi St, Tehran"
	o, problems, err := svc.CreateOrder(ctx, customerID, CreateOrderInput{
		CategoryID:      categoryID,
		PlanID:          planID,
		Quantity:        10,
		ShippingAddress: &address,
		DesignFilePath:  &design,
	})
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Equal(t, int64(5), o.ConfigVersion)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, int64(10000), o.PrintPrice)
	assert.Equal(t, &design, o.DesignFilePath)
}

func TestOrderService_CreateOrder_SemiPrivatePinsFixFee(t *testing.T) {
	repo := new(mockOrderRepo)
	categoryID := uuid.New()
	planID := uuid.New()
	three := 3
	categories := []models.Category{{
		ID: categoryID, Slug: "business-cards", Name: "Business cards", BasePrice: 1000, IsActive: true,
		DesignPlans: []models.DesignPlan{{
			ID: planID, CategoryID: categoryID, Slug: "semi", Kind: models.PlanKindSemiPrivate,
			MaxRevisions: &three, IsActive: true,
		}},
	}}
	snap := catalog.NewSnapshot(1, time.Now(), categories)
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Order"), []models.QuestionAnswer(nil)).Return(nil)

	o, _, err := svc.CreateOrder(ctx, uuid.New(), CreateOrderInput{
		CategoryID: categoryID, PlanID: planID, Quantity: 10,
	})
	require.NoError(t, err)

	// The per-round revision fee is pinned at creation, so a customer who
	// runs out of free rounds can always open a FIX payment; the plan has
	// no revision price of its own, so the configured default applies.
	assert.Equal(t, int64(100000), o.FixPrice)

	amount, err := amountForPurpose(o, models.PaymentPurposeFix)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), amount)
}

func TestOrderService_CreateOrder_OwnDesignRequiresFile(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)

	_, _, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		CategoryID: categoryID,
		PlanID:     planID,
		Quantity:   10,
	})
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
	repo.AssertNotCalled(t, "Create")
}

func TestOrderService_Transition_MarkReadyOpensOffer(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	payments := fakePaymentReader{counts: map[string]int{models.PaymentPurposePrint: 1}}
	svc := newTestOrderService(repo, payments, snap)
	ctx := context.Background()

	customerID := uuid.New()
	shopID := uuid.New()
	o := &models.Order{
		ID: uuid.New(), CustomerID: customerID, CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPending, Version: 3,
		Quantity: 10, PrintPrice: 10000,
	}

	repo.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("ListActivePrintShops", ctx).Return([]models.PrintShop{{UserID: shopID}}, nil)
	repo.On("ApplyTransition", ctx, mock.AnythingOfType("*models.Order"), int64(3)).Return(nil)

	updated, err := svc.Transition(ctx, o.ID, order.ActionMarkReady, TransitionInput{
		ActorID: customerID, ActorRole: models.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyForPrint, updated.Status)
	require.NotNil(t, updated.OfferedPrintShopID)
	assert.Equal(t, shopID, *updated.OfferedPrintShopID)
	assert.NotNil(t, updated.OfferExpiresAt)
	repo.AssertExpectations(t)
}

func TestOrderService_Transition_VersionConflict(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{
		ID: uuid.New(), CustomerID: customerID, CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPending, Version: 3,
	}

	repo.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("ApplyTransition", ctx, mock.AnythingOfType("*models.Order"), int64(3)).
		Return(repository.ErrVersionConflict)

	_, err := svc.Transition(ctx, o.ID, order.ActionCancel, TransitionInput{
		ActorID: customerID, ActorRole: models.RoleCustomer,
	})
	assert.True(t, apperror.Is(err, apperror.ErrCodeConflictingTransition))
}

func TestOrderService_Transition_ForeignOrderHidden(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	o := &models.Order{
		ID: uuid.New(), CustomerID: uuid.New(), CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPending, Version: 1,
	}
	repo.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.Transition(ctx, o.ID, order.ActionCancel, TransitionInput{
		ActorID: uuid.New(), ActorRole: models.RoleCustomer,
	})
	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNotCalled(t, "ApplyTransition")
}

func TestOrderService_Transition_AttachTrackingNeedsCode(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	shopID := uuid.New()
	o := &models.Order{
		ID: uuid.New(), CustomerID: uuid.New(), CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPrinting, Version: 2,
		AssignedPrintShopID: &shopID,
	}
	repo.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.Transition(ctx, o.ID, order.ActionAttachTracking, TransitionInput{
		ActorID: shopID, ActorRole: models.RolePrintShop,
	})
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
	repo.AssertNotCalled(t, "ApplyTransition")
}

func TestOrderService_ResubmitQuestionnaire_WrongStatus(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	customerID := uuid.New()
	o := &models.Order{
		ID: uuid.New(), CustomerID: customerID, CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPrinting, Version: 1,
	}
	repo.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.ResubmitQuestionnaire(ctx, o.ID, customerID, nil)
	assert.True(t, apperror.Is(err, apperror.ErrCodeForbiddenTransition))
}

func TestOrderService_AssignStaff(t *testing.T) {
	repo := new(mockOrderRepo)
	snap, categoryID, planID := orderTestCatalog()
	svc := newTestOrderService(repo, fakePaymentReader{}, snap)
	ctx := context.Background()

	designerID := uuid.New()
	o := &models.Order{
		ID: uuid.New(), CustomerID: uuid.New(), CategoryID: categoryID, PlanID: planID,
		ConfigVersion: 5, Status: models.OrderStatusPending, Version: 1,
	}
	repo.On("GetByID", ctx, o.ID).Return(o, nil)
	repo.On("ApplyTransition", ctx, mock.AnythingOfType("*models.Order"), int64(1)).Return(nil)

	updated, err := svc.AssignStaff(ctx, o.ID, designerID, models.RoleDesigner)
	require.NoError(t, err)
	assert.Equal(t, &designerID, updated.AssignedDesignerID)

	_, err = svc.AssignStaff(ctx, o.ID, designerID, models.RoleCustomer)
	assert.True(t, apperror.Is(err, apperror.ErrCodeBadRequest))
}
