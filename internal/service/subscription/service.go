// internal/service/subscription/service.go
package subscription

import (
	"context"
	"fmt"
	"time"

	"duka-service/internal/domain/subscription"

	"go.uber.org/zap"
)

// Repository is the slice of persistence the sweeps need. The conditional
// update in ExtendExpiry is what keeps the renewal sweep idempotent under
// concurrent runs: the row is only touched while expires_at is still inside
// the renewal window.
type Repository interface {
	FindExpired(ctx context.Context, now time.Time) ([]*subscription.Subscription, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error)
	FindDueForRenewal(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error)
	MarkExpired(ctx context.Context, id int64, now time.Time) error
	ExtendExpiry(ctx context.Context, id int64, newExpiresAt, notAfter, now time.Time) (bool, error)
}

// Notifier enqueues a message for asynchronous at-least-once delivery.
// Enqueue never blocks and never fails the caller.
type Notifier interface {
	Enqueue(recipient, message string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// SweepExpired transitions every active subscription whose expiry has passed
// to expired and enqueues one expiry notification each. One subscription's
// failure never blocks the rest.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (*subscription.SweepReport, error) {
	subs, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired subscriptions: %w", err)
	}

	report := &subscription.SweepReport{Scanned: len(subs)}

	for _, sub := range subs {
		if err := s.repo.MarkExpired(ctx, sub.ID, now); err != nil {
			report.Failed++
			s.logger.Error("failed to expire subscription",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("shop_id", sub.ShopID),
				zap.Error(err),
			)
			continue
		}
		report.Updated++

		if s.notify(sub, ExpiredMessage(sub)) {
			report.Notified++
		}
	}

	return report, nil
}

// SweepExpiring enqueues a reminder for every active subscription expiring
// exactly daysAhead calendar days from now. Pure read + notify; no state is
// mutated.
func (s *Service) SweepExpiring(ctx context.Context, now time.Time, daysAhead int) (*subscription.SweepReport, error) {
	if daysAhead <= 0 {
		return nil, fmt.Errorf("daysAhead must be positive, got %d", daysAhead)
	}

	target := now.AddDate(0, 0, daysAhead)
	from := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	subs, err := s.repo.FindExpiringBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}

	report := &subscription.SweepReport{Scanned: len(subs)}

	for _, sub := range subs {
		if s.notify(sub, ExpiryReminderMessage(sub, daysAhead)) {
			report.Notified++
		}
	}

	return report, nil
}

// SweepAutoRenewal extends every auto-renewing subscription that expires
// within the next 24 hours. The extension is measured from the current
// expires_at, not from now, so an early run keeps the shop's remaining time.
// A subscription whose expiry already moved past the window (a prior or
// concurrent run got there first) is skipped.
func (s *Service) SweepAutoRenewal(ctx context.Context, now time.Time) (*subscription.SweepReport, error) {
	windowEnd := now.Add(24 * time.Hour)

	subs, err := s.repo.FindDueForRenewal(ctx, now, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list renewable subscriptions: %w", err)
	}

	report := &subscription.SweepReport{Scanned: len(subs)}

	for _, sub := range subs {
		if sub.ExpiresAt.After(windowEnd) {
			report.Skipped++
			continue
		}

		newExpiry := sub.ExpiresAt.AddDate(0, 0, sub.Plan.DurationDays())

		applied, err := s.repo.ExtendExpiry(ctx, sub.ID, newExpiry, windowEnd, now)
		if err != nil {
			report.Failed++
			s.logger.Error("failed to renew subscription",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("shop_id", sub.ShopID),
				zap.Error(err),
			)
			continue
		}
		if !applied {
			// Row moved out of the window between select and update.
			report.Skipped++
			continue
		}
		report.Updated++

		if s.notify(sub, RenewedMessage(sub, newExpiry)) {
			report.Notified++
		}
	}

	return report, nil
}

func (s *Service) notify(sub *subscription.Subscription, message string) bool {
	if sub.ShopPhone == "" {
		s.logger.Warn("shop has no phone, skipping notification",
			zap.Int64("subscription_id", sub.ID),
			zap.Int64("shop_id", sub.ShopID),
		)
		return false
	}
	s.notifier.Enqueue(sub.ShopPhone, message)
	return true
}
