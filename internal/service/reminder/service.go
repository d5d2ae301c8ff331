// internal/service/reminder/service.go
package reminder

import (
	"context"
	"fmt"
	"time"

	"duka-service/internal/domain/customer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store lists credit customers eligible for a reminder: debt above the
// threshold and a phone number on file.
type Store interface {
	ListDebtors(ctx context.Context, minDebt decimal.Decimal) ([]*customer.Customer, error)
}

type Notifier interface {
	Enqueue(recipient, message string)
}

type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SendDebtReminders enqueues one SMS per customer owing more than minDebt.
// Same per-entity isolation as the subscription sweeps.
func (s *Service) SendDebtReminders(ctx context.Context, now time.Time, minDebt decimal.Decimal) (*customer.ReminderReport, error) {
	debtors, err := s.store.ListDebtors(ctx, minDebt)
	if err != nil {
		return nil, fmt.Errorf("failed to list debtors: %w", err)
	}

	report := &customer.ReminderReport{Scanned: len(debtors)}

	for _, c := range debtors {
		if !c.Phone.Valid || c.Phone.String == "" {
			report.Failed++
			s.logger.Warn("debtor has no phone, skipping reminder",
				zap.Int64("customer_id", c.ID),
				zap.Int64("shop_id", c.ShopID),
			)
			continue
		}

		s.notifier.Enqueue(c.Phone.String, debtReminderMessage(c, now))
		report.Notified++
	}

	return report, nil
}

func debtReminderMessage(c *customer.Customer, now time.Time) string {
	return fmt.Sprintf("Dear %s, you have an outstanding balance of KES %s at %s as of %s. Kindly clear it at your earliest convenience.",
		c.Name, c.CurrentDebt.StringFixed(2), c.ShopName, now.Format("02 Jan 2006"))
}
