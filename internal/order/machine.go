package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Action is one operator-visible operation on an order.
type Action string

const (
	ActionRequestValidation Action = "request_validation"
	ActionStartDesign       Action = "start_design"
	ActionReportDefects     Action = "report_defects"
	ActionAcceptFix         Action = "accept_fix"
	ActionDeclineFix        Action = "decline_fix"
	ActionRequestRevision   Action = "request_revision"
	ActionResumeDesign      Action = "resume_design"
	ActionDeliverDraft      Action = "deliver_draft"
	ActionMarkReady         Action = "mark_ready"
	ActionAcceptPrint       Action = "accept_print"
	ActionAttachTracking    Action = "attach_tracking"
	ActionConfirmDelivered  Action = "confirm_delivered"
	ActionCancel            Action = "cancel"
)

// PaymentGates answers which successful payments exist for the order being
// transitioned. Only SUCCESS payments count.
type PaymentGates interface {
	HasSuccess(purpose string) bool
	SuccessCount(purpose string) int
}

// Input carries the acting identity and ambient data of one transition.
type Input struct {
	ActorID   uuid.UUID
	ActorRole string
	Now       time.Time
	Gates     PaymentGates
}

type edgeKey struct {
	from   string
	action Action
}

// edge is one row of the transition table: who may take the action, where
// it leads and which payment purposes gate it. No gates means the edge is
// not payment-gated; conditionalGate skips a gate whose matching price on
// the order is zero. Every edge into READY_FOR_PRINT carries the PRINT
// gate, so no path reaches printing unpaid.
type edge struct {
	to              string
	roles           map[string]struct{}
	gates           []string
	conditionalGate bool
}

func roles(rs ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}
	return m
}

// transitions is the authoritative transition table keyed by
// (current status, action). Anything not listed here is rejected.
var transitions = map[edgeKey]edge{
	{models.OrderStatusPending, ActionRequestValidation}: {
		to:    models.OrderStatusAwaitingValidation,
		roles: roles(models.RoleCustomer),
		gates: []string{models.PaymentPurposeValidation},
	},
	{models.OrderStatusPending, ActionStartDesign}: {
		to:              models.OrderStatusDesigning,
		roles:           roles(models.RoleCustomer),
		gates:           []string{models.PaymentPurposeDesign},
		conditionalGate: true,
	},
	{models.OrderStatusPending, ActionMarkReady}: {
		to:    models.OrderStatusReadyForPrint,
		roles: roles(models.RoleCustomer),
		gates: []string{models.PaymentPurposePrint},
	},
	{models.OrderStatusPending, ActionCancel}: {
		to:    models.OrderStatusCancelled,
		roles: roles(models.RoleCustomer, models.RoleAdmin),
	},

	{models.OrderStatusAwaitingValidation, ActionReportDefects}: {
		to:    models.OrderStatusNeedsAction,
		roles: roles(models.RoleValidator),
	},
	{models.OrderStatusAwaitingValidation, ActionMarkReady}: {
		to:    models.OrderStatusReadyForPrint,
		roles: roles(models.RoleValidator),
		gates: []string{models.PaymentPurposePrint},
	},
	{models.OrderStatusAwaitingValidation, ActionCancel}: {
		to:    models.OrderStatusCancelled,
		roles: roles(models.RoleCustomer, models.RoleAdmin),
	},

	{models.OrderStatusNeedsAction, ActionAcceptFix}: {
		to:    models.OrderStatusReadyForPrint,
		roles: roles(models.RoleValidator),
		gates: []string{models.PaymentPurposeFix, models.PaymentPurposePrint},
	},
	{models.OrderStatusNeedsAction, ActionDeclineFix}: {
		to:    models.OrderStatusReadyForPrint,
		roles: roles(models.RoleCustomer),
		gates: []string{models.PaymentPurposePrint},
	},
	{models.OrderStatusNeedsAction, ActionResumeDesign}: {
		to:    models.OrderStatusDesigning,
		roles: roles(models.RoleDesigner),
	},
	{models.OrderStatusNeedsAction, ActionCancel}: {
		to:    models.OrderStatusCancelled,
		roles: roles(models.RoleCustomer, models.RoleAdmin),
	},

	{models.OrderStatusDesigning, ActionDeliverDraft}: {
		to:    models.OrderStatusDesigning,
		roles: roles(models.RoleDesigner),
	},
	{models.OrderStatusDesigning, ActionRequestRevision}: {
		to:    models.OrderStatusNeedsAction,
		roles: roles(models.RoleCustomer),
	},
	{models.OrderStatusDesigning, ActionMarkReady}: {
		to:    models.OrderStatusReadyForPrint,
		roles: roles(models.RoleCustomer, models.RoleDesigner),
		gates: []string{models.PaymentPurposePrint},
	},
	{models.OrderStatusDesigning, ActionCancel}: {
		to:    models.OrderStatusCancelled,
		roles: roles(models.RoleCustomer, models.RoleAdmin),
	},

	{models.OrderStatusReadyForPrint, ActionAcceptPrint}: {
		to:    models.OrderStatusPrinting,
		roles: roles(models.RolePrintShop),
	},

	{models.OrderStatusPrinting, ActionAttachTracking}: {
		to:    models.OrderStatusShipped,
		roles: roles(models.RolePrintShop),
	},

	{models.OrderStatusShipped, ActionConfirmDelivered}: {
		to:    models.OrderStatusDelivered,
		roles: roles(models.RoleCustomer, models.RoleAdmin),
	},
}

// Machine applies the transition table with the revision bounding rules.
type Machine struct {
	revisionWindow time.Duration
}

// NewMachine creates a machine with the private-plan revision window.
func NewMachine(revisionWindow time.Duration) *Machine {
	return &Machine{revisionWindow: revisionWindow}
}

// Next resolves the target status of applying action to the order, or
// rejects the attempt. The order itself is not mutated; the caller applies
// side effects once the conditional persistence write succeeds.
func (m *Machine) Next(o *models.Order, plan *models.DesignPlan, action Action, in Input) (string, error) {
	e, ok := transitions[edgeKey{o.Status, action}]
	if !ok {
		return "", apperror.Newf(apperror.ErrCodeForbiddenTransition,
			"action %s is not defined for status %s", action, o.Status)
	}

	if _, allowed := e.roles[in.ActorRole]; !allowed && in.ActorRole != models.RoleAdmin {
		return "", apperror.Newf(apperror.ErrCodeForbiddenTransition,
			"role %s may not perform %s on status %s", in.ActorRole, action, o.Status)
	}

	if err := m.checkActor(o, action, in); err != nil {
		return "", err
	}

	for _, gate := range e.gates {
		if !m.gateApplies(o, gate, e.conditionalGate) {
			continue
		}
		if in.Gates == nil || !in.Gates.HasSuccess(gate) {
			return "", apperror.Newf(apperror.ErrCodeForbiddenTransition,
				"a successful %s payment is required before %s", gate, action)
		}
	}

	if action == ActionRequestRevision {
		if err := m.checkRevisionAllowed(o, plan, in); err != nil {
			return "", err
		}
	}

	return e.to, nil
}

// checkActor enforces assignment-level authorization on top of the role
// column: e.g. only the assigned validator may report defects, and only
// the shop currently holding the live offer may accept a print job.
func (m *Machine) checkActor(o *models.Order, action Action, in Input) error {
	if in.ActorRole == models.RoleAdmin {
		return nil
	}

	switch action {
	case ActionReportDefects, ActionAcceptFix:
		if o.AssignedValidatorID == nil || *o.AssignedValidatorID != in.ActorID {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "only the assigned validator may do this")
		}
	case ActionResumeDesign, ActionDeliverDraft:
		if o.AssignedDesignerID == nil || *o.AssignedDesignerID != in.ActorID {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "only the assigned designer may do this")
		}
	case ActionAcceptPrint:
		if o.OfferedPrintShopID == nil || *o.OfferedPrintShopID != in.ActorID {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "the order is not offered to this print shop")
		}
		if o.OfferExpiresAt != nil && in.Now.After(*o.OfferExpiresAt) {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "the print offer has expired")
		}
	case ActionAttachTracking:
		if o.AssignedPrintShopID == nil || *o.AssignedPrintShopID != in.ActorID {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "only the assigned print shop may do this")
		}
	case ActionRequestValidation, ActionStartDesign, ActionMarkReady,
		ActionDeclineFix, ActionRequestRevision, ActionConfirmDelivered, ActionCancel:
		if in.ActorRole == models.RoleCustomer && o.CustomerID != in.ActorID {
			return apperror.New(apperror.ErrCodeForbiddenTransition, "only the order's customer may do this")
		}
	}
	return nil
}

func (m *Machine) gateApplies(o *models.Order, purpose string, conditional bool) bool {
	if !conditional {
		return true
	}
	// A zero-priced step never requires a payment.
	switch purpose {
	case models.PaymentPurposeDesign:
		return o.DesignPrice > 0
	case models.PaymentPurposeValidation:
		return o.ValidationPrice > 0
	default:
		return true
	}
}

// checkRevisionAllowed bounds the revision cycle. Semi-private plans allow
// max_revisions free rounds; each successful FIX payment buys one more.
// Private plans are unlimited within the revision window measured from the
// first draft delivery.
func (m *Machine) checkRevisionAllowed(o *models.Order, plan *models.DesignPlan, in Input) error {
	if plan == nil {
		return apperror.New(apperror.ErrCodeInternal, "order has no design plan")
	}

	switch plan.Kind {
	case models.PlanKindPrivate:
		if o.FirstDraftAt == nil {
			return apperror.New(apperror.ErrCodeForbiddenTransition,
				"no draft has been delivered yet")
		}
		if in.Now.After(o.FirstDraftAt.Add(m.revisionWindow)) {
			return apperror.New(apperror.ErrCodeRevisionWindowExpired,
				"the revision window has closed")
		}
		return nil
	case models.PlanKindSemiPrivate:
		free := 0
		if o.MaxRevisions != nil {
			free = *o.MaxRevisions
		}
		paid := 0
		if in.Gates != nil {
			paid = in.Gates.SuccessCount(models.PaymentPurposeFix)
		}
		if o.RevisionCount >= free+paid {
			return apperror.Newf(apperror.ErrCodeRevisionQuotaExceeded,
				"all %d free revisions are used; a FIX payment buys another round", free)
		}
		return nil
	default:
		return apperror.Newf(apperror.ErrCodeForbiddenTransition,
			"plan kind %s has no revision cycle", plan.Kind)
	}
}

// Edges returns the transition table for reachability checks.
func Edges() map[string][]string {
	out := make(map[string][]string)
	for k, e := range transitions {
		out[k.from] = append(out[k.from], e.to)
	}
	return out
}
