package service

import (
	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
)

// Notification event names pushed over WebSocket.
const (
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDraftReady    = "order.draft_ready"
	EventOrderCompositeDone = "order.composite_ready"
	EventPrintOfferReceived = "print.offer_received"
	EventPaymentReceipt     = "payment.receipt_uploaded"
	EventPaymentResolved    = "payment.resolved"
)

// Notifier pushes events to connected clients.
type Notifier interface {
	NotifyUser(userID uuid.UUID, event string, data any) error
	NotifyAdmins(event string, data any)
}

// NotificationService fans order and payment events out to the parties
// involved. Delivery is best effort; a missed push never fails the
// operation that produced it.
type NotificationService struct {
	notifier Notifier
}

// NewNotificationService creates the service.
func NewNotificationService(notifier Notifier) *NotificationService {
	return &NotificationService{notifier: notifier}
}

// NotifyUser pushes one event to a user, logging failures.
func (s *NotificationService) NotifyUser(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(userID, event, data); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID,
			"event":   event,
		}).Warnf("notification: push failed: %v", err)
	}
}

// NotifyAdmins pushes one event to every connected admin.
func (s *NotificationService) NotifyAdmins(event string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyAdmins(event, data)
}
