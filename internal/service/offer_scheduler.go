package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/goroutine"
	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
)

// OfferSchedulerRepo is the storage surface of the scheduler.
type OfferSchedulerRepo interface {
	ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
	AdvanceOffer(ctx context.Context, orderID, fromShopID, toShopID uuid.UUID, expiresAt time.Time, cursor int) error
	ListActivePrintShops(ctx context.Context) ([]models.PrintShop, error)
}

// OfferScheduler rotates expired print offers to the next active shop.
// Every tick is idempotent: the advance write is keyed on the shop that
// held the expired offer, so two racing ticks move an offer once.
type OfferScheduler struct {
	repo          OfferSchedulerRepo
	notifications *NotificationService
	tick          time.Duration
	window        time.Duration
	batchSize     int
}

// NewOfferScheduler creates the scheduler.
func NewOfferScheduler(repo OfferSchedulerRepo, notifications *NotificationService, tick, window time.Duration) *OfferScheduler {
	return &OfferScheduler{
		repo:          repo,
		notifications: notifications,
		tick:          tick,
		window:        window,
		batchSize:     100,
	}
}

// Run loops until ctx is cancelled.
func (s *OfferScheduler) Run(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Tick(ctx, time.Now()); err != nil {
					logger.Log.Errorf("offer scheduler: tick failed: %v", err)
				}
			}
		}
	})
}

// Tick advances every expired offer once.
func (s *OfferScheduler) Tick(ctx context.Context, now time.Time) error {
	expired, err := s.repo.ListExpiredOffers(ctx, now, s.batchSize)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	shops, err := s.repo.ListActivePrintShops(ctx)
	if err != nil {
		return err
	}
	if len(shops) == 0 {
		return nil
	}

	for i := range expired {
		s.advance(ctx, &expired[i], shops, now)
	}
	return nil
}

// advance moves one order's offer to the next shop in rotation order.
func (s *OfferScheduler) advance(ctx context.Context, o *models.Order, shops []models.PrintShop, now time.Time) {
	if o.OfferedPrintShopID == nil {
		return
	}

	cursor := (o.OfferCursor + 1) % len(shops)
	next := shops[cursor]
	expires := now.Add(s.window)

	err := s.repo.AdvanceOffer(ctx, o.ID, *o.OfferedPrintShopID, next.UserID, expires, cursor)
	if err != nil {
		if errors.Is(err, repository.ErrOfferMoved) {
			// Someone else advanced or the shop accepted in time.
			return
		}
		logger.Log.WithFields(map[string]interface{}{
			"order_id": o.ID,
		}).Errorf("offer scheduler: advance failed: %v", err)
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"order_id": o.ID,
		"shop_id":  next.UserID,
		"cursor":   cursor,
	}).Info("offer scheduler: offer rotated")

	if s.notifications != nil {
		s.notifications.NotifyUser(next.UserID, EventPrintOfferReceived, map[string]any{
			"order_id":   o.ID,
			"expires_at": expires,
		})
	}
}
