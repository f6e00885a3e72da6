package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/catalog"
	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/order"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/pricing"
	"github.com/mahdiyarhamdi/sheetaro/internal/questionnaire"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
	"github.com/mahdiyarhamdi/sheetaro/internal/validation"
)

// OrderRepo describes the storage dependencies of OrderService.
type OrderRepo interface {
	Create(ctx context.Context, o *models.Order, answers []models.QuestionAnswer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, error)
	ListPrintQueue(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error)
	ApplyTransition(ctx context.Context, o *models.Order, expectedVersion int64) error
	GetAnswers(ctx context.Context, orderID uuid.UUID) ([]models.QuestionAnswer, error)
	ReplaceAnswers(ctx context.Context, orderID uuid.UUID, answers []models.QuestionAnswer) error
	ListActivePrintShops(ctx context.Context) ([]models.PrintShop, error)
}

// PaymentReader answers which successful payments an order has.
type PaymentReader interface {
	HasSuccess(ctx context.Context, orderID uuid.UUID, purpose string) (bool, error)
	SuccessCount(ctx context.Context, orderID uuid.UUID, purpose string) (int, error)
}

// CatalogProvider serves pinned catalog snapshots.
type CatalogProvider interface {
	Latest(ctx context.Context) (*catalog.Snapshot, error)
	Version(ctx context.Context, version int64) (*catalog.Snapshot, error)
}

// OrderService drives the order lifecycle: creation against a pinned
// catalog version and role-gated transitions through the state machine.
type OrderService struct {
	repo          OrderRepo
	payments      PaymentReader
	catalog       CatalogProvider
	machine       *order.Machine
	calculator    *pricing.Calculator
	engine        *questionnaire.Engine
	templates     *TemplateService
	notifications *NotificationService
	offerWindow   time.Duration
}

// NewOrderService creates the service.
func NewOrderService(
	repo OrderRepo,
	payments PaymentReader,
	catalogProvider CatalogProvider,
	machine *order.Machine,
	calculator *pricing.Calculator,
	engine *questionnaire.Engine,
	templates *TemplateService,
	notifications *NotificationService,
	offerWindow time.Duration,
) *OrderService {
	return &OrderService{
		repo:          repo,
		payments:      payments,
		catalog:       catalogProvider,
		machine:       machine,
		calculator:    calculator,
		engine:        engine,
		templates:     templates,
		notifications: notifications,
		offerWindow:   offerWindow,
	}
}

// CreateOrderInput carries the order form.
type CreateOrderInput struct {
	CategoryID          uuid.UUID
	PlanID              uuid.UUID
	Quantity            int
	Selections          map[string]string
	ValidationRequested bool
	ShippingAddress     *string
	CustomerNotes       *string

	// Template flow.
	TemplateID *uuid.UUID
	LogoPath   *string

	// Own-design flow.
	DesignFilePath *string

	// Questionnaire flow.
	Answers map[uuid.UUID]questionnaire.Answer
}

// Quote prices an order form against the published catalog without
// creating anything.
func (s *OrderService) Quote(ctx context.Context, in CreateOrderInput) (*pricing.Quote, error) {
	snap, err := s.catalog.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.calculator.Compute(snap, in.CategoryID, in.PlanID, in.Selections, in.Quantity, in.ValidationRequested)
}

// CreateOrder validates the form against the latest catalog version, pins
// that version on the order and stores it in PENDING.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uuid.UUID, in CreateOrderInput) (*models.Order, []questionnaire.SubmissionProblem, error) {
	if err := validation.ValidateQuantity(in.Quantity); err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidateShippingAddress(in.ShippingAddress); err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	snap, err := s.catalog.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}

	quote, err := s.calculator.Compute(snap, in.CategoryID, in.PlanID, in.Selections, in.Quantity, in.ValidationRequested)
	if err != nil {
		return nil, nil, err
	}

	plan, _ := snap.Plan(in.PlanID)

	o := &models.Order{
		CustomerID:          customerID,
		CategoryID:          in.CategoryID,
		PlanID:              in.PlanID,
		ConfigVersion:       snap.Version,
		Status:              models.OrderStatusPending,
		Quantity:            in.Quantity,
		Selections:          in.Selections,
		ValidationRequested: in.ValidationRequested,
		MaxRevisions:        plan.MaxRevisions,
		DesignPrice:         quote.DesignPrice,
		ValidationPrice:     quote.ValidationPrice,
		PrintPrice:          quote.PrintPrice,
		TotalPrice:          quote.Total,
		ShippingAddress:     in.ShippingAddress,
		CustomerNotes:       in.CustomerNotes,
	}
	if plan.Kind == models.PlanKindSemiPrivate {
		// A customer who exhausts the free revision quota buys extra rounds
		// with FIX payments, so the per-round fee is pinned up front.
		o.FixPrice = s.calculator.FixFee(plan)
	}

	var answers []models.QuestionAnswer
	switch {
	case plan.HasTemplates:
		answers = nil
		if err := s.prepareTemplateOrder(ctx, snap, plan, o, in); err != nil {
			return nil, nil, err
		}
	case plan.HasQuestionnaire:
		accepted, problems, err := s.engine.ValidateSubmission(snap.PlanQuestions(plan.ID), in.Answers)
		if err != nil {
			return nil, problems, err
		}
		answers = answersToModels(accepted)
	case plan.HasFileUpload:
		if in.DesignFilePath == nil || *in.DesignFilePath == "" {
			return nil, nil, apperror.New(apperror.ErrCodeBadRequest, "a print-ready design file is required")
		}
		o.DesignFilePath = in.DesignFilePath
	}

	if err := s.repo.Create(ctx, o, answers); err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"order_id":       o.ID,
		"customer_id":    customerID,
		"config_version": o.ConfigVersion,
		"total":          o.TotalPrice,
	}).Info("order: created")
	return o, nil, nil
}

func (s *OrderService) prepareTemplateOrder(ctx context.Context, snap *catalog.Snapshot, plan *models.DesignPlan, o *models.Order, in CreateOrderInput) error {
	if in.TemplateID == nil {
		return apperror.New(apperror.ErrCodeBadRequest, "a template selection is required")
	}
	if in.LogoPath == nil || *in.LogoPath == "" {
		return apperror.New(apperror.ErrCodeBadRequest, "a logo upload is required")
	}

	tmpl, ok := snap.Template(*in.TemplateID)
	if !ok || !tmpl.IsActive || tmpl.PlanID != plan.ID {
		return apperror.New(apperror.ErrCodeNotFound, "template not found in the selected plan")
	}

	compositePath, err := s.templates.RenderComposite(ctx, o.CustomerID, tmpl, *in.LogoPath)
	if err != nil {
		return err
	}

	o.TemplateID = in.TemplateID
	o.LogoPath = in.LogoPath
	o.CompositePath = &compositePath
	return nil
}

// GetOrder returns an order the actor is allowed to see.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole string) (*models.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if !canSeeOrder(o, actorID, actorRole) {
		return nil, apperror.ErrOrderNotFound
	}
	return o, nil
}

// GetAnswers returns the questionnaire answers of an order.
func (s *OrderService) GetAnswers(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorRole string) ([]models.QuestionAnswer, error) {
	if _, err := s.GetOrder(ctx, orderID, actorID, actorRole); err != nil {
		return nil, err
	}
	return s.repo.GetAnswers(ctx, orderID)
}

// ListMyOrders returns the customer's orders.
func (s *OrderService) ListMyOrders(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, error) {
	if status != "" {
		if _, ok := models.ValidOrderStatuses[status]; !ok {
			return nil, apperror.Newf(apperror.ErrCodeBadRequest, "unknown order status %q", status)
		}
	}
	return s.repo.ListByCustomer(ctx, customerID, status, normalizeLimit(limit), offset)
}

// ListPrintQueue returns orders currently offered to the print shop.
func (s *OrderService) ListPrintQueue(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.repo.ListPrintQueue(ctx, shopID, normalizeLimit(limit), offset)
}

// ListByStatus returns orders in one status, for staff dashboards.
func (s *OrderService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	if _, ok := models.ValidOrderStatuses[status]; !ok {
		return nil, apperror.Newf(apperror.ErrCodeBadRequest, "unknown order status %q", status)
	}
	return s.repo.ListByStatus(ctx, status, normalizeLimit(limit), offset)
}

// TransitionInput carries the per-action payload of a transition request.
type TransitionInput struct {
	ActorID   uuid.UUID
	ActorRole string

	DefectReport  *string // report_defects
	TrackingCode  *string // attach_tracking
	DraftFilePath *string // deliver_draft
}

// Transition applies one state-machine action. The write is conditional
// on the version the order was read at; a concurrent writer surfaces as
// ConflictingTransition and the client retries on fresh state.
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, action order.Action, in TransitionInput) (*models.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if !canSeeOrder(o, in.ActorID, in.ActorRole) {
		return nil, apperror.ErrOrderNotFound
	}

	snap, err := s.catalog.Version(ctx, o.ConfigVersion)
	if err != nil {
		return nil, err
	}
	plan, _ := snap.Plan(o.PlanID)

	gates, err := s.loadGates(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	next, err := s.machine.Next(o, plan, action, order.Input{
		ActorID:   in.ActorID,
		ActorRole: in.ActorRole,
		Now:       now,
		Gates:     gates,
	})
	if err != nil {
		return nil, err
	}

	expectedVersion := o.Version
	prevStatus := o.Status
	o.Status = next
	if err := s.applySideEffects(ctx, o, plan, action, in, now); err != nil {
		return nil, err
	}

	if err := s.repo.ApplyTransition(ctx, o, expectedVersion); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperror.New(apperror.ErrCodeConflictingTransition,
				"the order changed underneath this request; reload and retry")
		}
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"order_id": o.ID,
		"action":   action,
		"from":     prevStatus,
		"to":       o.Status,
		"actor":    in.ActorID,
	}).Info("order: transition applied")

	s.notifyTransition(o, action, prevStatus)
	return o, nil
}

// applySideEffects mutates the in-memory order for the accepted action
// before the conditional persistence write.
func (s *OrderService) applySideEffects(ctx context.Context, o *models.Order, plan *models.DesignPlan, action order.Action, in TransitionInput, now time.Time) error {
	switch action {
	case order.ActionReportDefects:
		if in.DefectReport == nil {
			return apperror.New(apperror.ErrCodeBadRequest, "a defect report is required")
		}
		if err := validation.ValidateDefectReport(*in.DefectReport); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
		}
		o.DefectReport = in.DefectReport
		o.FixPrice = s.calculator.FixFee(plan)

	case order.ActionDeliverDraft:
		if in.DraftFilePath == nil || *in.DraftFilePath == "" {
			return apperror.New(apperror.ErrCodeBadRequest, "a draft file is required")
		}
		o.DesignFilePath = in.DraftFilePath
		if o.FirstDraftAt == nil {
			t := now
			o.FirstDraftAt = &t
		}

	case order.ActionRequestRevision:
		o.RevisionCount++

	case order.ActionMarkReady:
		if err := s.openFirstOffer(ctx, o, now); err != nil {
			return err
		}

	case order.ActionAcceptPrint:
		shopID := in.ActorID
		o.AssignedPrintShopID = &shopID
		o.OfferedPrintShopID = nil
		o.OfferExpiresAt = nil
		t := now
		o.AcceptedAt = &t

	case order.ActionAttachTracking:
		if in.TrackingCode == nil || *in.TrackingCode == "" {
			return apperror.New(apperror.ErrCodeBadRequest, "a tracking code is required")
		}
		o.TrackingCode = in.TrackingCode
		t := now
		o.ShippedAt = &t

	case order.ActionConfirmDelivered:
		t := now
		o.DeliveredAt = &t

	case order.ActionCancel:
		t := now
		o.CancelledAt = &t
	}
	return nil
}

// openFirstOffer starts the print rotation at the first active shop.
func (s *OrderService) openFirstOffer(ctx context.Context, o *models.Order, now time.Time) error {
	shops, err := s.repo.ListActivePrintShops(ctx)
	if err != nil {
		return err
	}
	if len(shops) == 0 {
		// No shop to offer to; the scheduler picks the order up once one
		// registers.
		o.OfferedPrintShopID = nil
		o.OfferExpiresAt = nil
		o.OfferCursor = 0
		return nil
	}

	shopID := shops[0].UserID
	expires := now.Add(s.offerWindow)
	o.OfferedPrintShopID = &shopID
	o.OfferExpiresAt = &expires
	o.OfferCursor = 0
	return nil
}

// ResubmitQuestionnaire replaces the stored answers during a revision
// round. Only the owning customer may resubmit, and only while the order
// is waiting on customer action.
func (s *OrderService) ResubmitQuestionnaire(ctx context.Context, orderID, customerID uuid.UUID, answers map[uuid.UUID]questionnaire.Answer) ([]questionnaire.SubmissionProblem, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, apperror.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusNeedsAction {
		return nil, apperror.Newf(apperror.ErrCodeForbiddenTransition,
			"answers cannot change while the order is %s", o.Status)
	}

	snap, err := s.catalog.Version(ctx, o.ConfigVersion)
	if err != nil {
		return nil, err
	}
	plan, ok := snap.Plan(o.PlanID)
	if !ok || !plan.HasQuestionnaire {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "the order's plan has no questionnaire")
	}

	accepted, problems, err := s.engine.ValidateSubmission(snap.PlanQuestions(plan.ID), answers)
	if err != nil {
		return problems, err
	}

	if err := s.repo.ReplaceAnswers(ctx, orderID, answersToModels(accepted)); err != nil {
		return nil, err
	}
	return nil, nil
}

// AssignStaff sets the designer or validator of an order. Admin only.
func (s *OrderService) AssignStaff(ctx context.Context, orderID, staffID uuid.UUID, staffRole string) (*models.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if o.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeForbiddenTransition, "the order is closed")
	}

	switch staffRole {
	case models.RoleDesigner:
		o.AssignedDesignerID = &staffID
	case models.RoleValidator:
		o.AssignedValidatorID = &staffID
	default:
		return nil, apperror.Newf(apperror.ErrCodeBadRequest, "role %s cannot be assigned to orders", staffRole)
	}

	if err := s.repo.ApplyTransition(ctx, o, o.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperror.New(apperror.ErrCodeConflictingTransition,
				"the order changed underneath this request; reload and retry")
		}
		return nil, err
	}
	return o, nil
}

// loadGates snapshots the order's successful payments for gate checks.
func (s *OrderService) loadGates(ctx context.Context, orderID uuid.UUID) (order.PaymentGates, error) {
	gates := paymentGates{counts: make(map[string]int, len(models.ValidPaymentPurposes))}
	for purpose := range models.ValidPaymentPurposes {
		count, err := s.payments.SuccessCount(ctx, orderID, purpose)
		if err != nil {
			return nil, err
		}
		gates.counts[purpose] = count
	}
	return gates, nil
}

func (s *OrderService) notifyTransition(o *models.Order, action order.Action, prevStatus string) {
	if s.notifications == nil {
		return
	}

	payload := map[string]any{
		"order_id": o.ID,
		"from":     prevStatus,
		"to":       o.Status,
		"action":   string(action),
	}

	if action == order.ActionDeliverDraft {
		s.notifications.NotifyUser(o.CustomerID, EventOrderDraftReady, payload)
		return
	}

	if o.Status != prevStatus {
		s.notifications.NotifyUser(o.CustomerID, EventOrderStatusChanged, payload)
	}
	if action == order.ActionMarkReady && o.OfferedPrintShopID != nil {
		s.notifications.NotifyUser(*o.OfferedPrintShopID, EventPrintOfferReceived, map[string]any{
			"order_id":   o.ID,
			"expires_at": o.OfferExpiresAt,
		})
	}
}

// paymentGates is a pre-loaded view of the order's SUCCESS payments.
type paymentGates struct {
	counts map[string]int
}

func (g paymentGates) HasSuccess(purpose string) bool {
	return g.counts[purpose] > 0
}

func (g paymentGates) SuccessCount(purpose string) int {
	return g.counts[purpose]
}

func canSeeOrder(o *models.Order, actorID uuid.UUID, actorRole string) bool {
	switch actorRole {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return o.CustomerID == actorID
	case models.RoleDesigner:
		return o.AssignedDesignerID != nil && *o.AssignedDesignerID == actorID
	case models.RoleValidator:
		return o.AssignedValidatorID != nil && *o.AssignedValidatorID == actorID
	case models.RolePrintShop:
		if o.AssignedPrintShopID != nil && *o.AssignedPrintShopID == actorID {
			return true
		}
		return o.OfferedPrintShopID != nil && *o.OfferedPrintShopID == actorID
	default:
		return false
	}
}

func answersToModels(accepted map[uuid.UUID]questionnaire.Answer) []models.QuestionAnswer {
	out := make([]models.QuestionAnswer, 0, len(accepted))
	for qid, a := range accepted {
		qa := models.QuestionAnswer{QuestionID: qid}
		if a.Text != "" {
			text := a.Text
			qa.Text = &text
		}
		qa.Values = a.Values
		if a.FileName != "" {
			name := a.FileName
			qa.FilePath = &name
		}
		out = append(out, qa)
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
