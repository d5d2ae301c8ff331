// internal/service/writeoff/service.go
package writeoff

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duka-service/internal/domain/sales"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the persistence slice for the receivables write-off sweep.
// WriteOff must insert the bad-debt expense and stamp the sale's
// converted_to_expense_at in one transaction per sale, so each sale commits
// or rolls back on its own and a failing sale never undoes the ones already
// converted.
type Store interface {
	ListOverdueCreditSales(ctx context.Context, cutoff time.Time) ([]*sales.Sale, error)
	WriteOff(ctx context.Context, sale *sales.Sale, expense *sales.Expense) error
}

// agingThreshold is how long a receivable stays collectible before the sweep
// converts it to a bad-debt expense.
const agingThreshold = time.Hour * 24 * 365

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ConvertUnpaidSales writes off every credit sale that has stayed unpaid for
// over a year. The converted_to_expense_at marker keeps re-runs from ever
// billing the same sale twice.
func (s *Service) ConvertUnpaidSales(ctx context.Context, now time.Time) (*sales.WriteOffReport, error) {
	cutoff := now.Add(-agingThreshold)

	overdue, err := s.store.ListOverdueCreditSales(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue credit sales: %w", err)
	}

	report := &sales.WriteOffReport{Scanned: len(overdue), Total: decimal.Zero}

	for _, sale := range overdue {
		expense := &sales.Expense{
			ShopID:      sale.ShopID,
			SaleID:      sql.NullInt64{Int64: sale.ID, Valid: true},
			Category:    sales.CategoryBadDebt,
			Amount:      sale.DebtAmount,
			Description: fmt.Sprintf("Bad debt write-off for sale #%d of %s", sale.ID, sale.SaleDate.Format("2006-01-02")),
			ExpenseDate: now,
		}

		if err := s.store.WriteOff(ctx, sale, expense); err != nil {
			report.Failed++
			s.logger.Error("failed to write off sale",
				zap.Int64("sale_id", sale.ID),
				zap.Int64("shop_id", sale.ShopID),
				zap.Error(err),
			)
			continue
		}

		report.Converted++
		report.Total = report.Total.Add(sale.DebtAmount)
	}

	return report, nil
}
