// internal/service/savings/service.go
package savings

import (
	"context"
	"fmt"
	"time"

	"duka-service/internal/domain/savings"
	"duka-service/internal/service/ledger"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the persistence slice for the daily savings run. RecordDeposit
// and RecordWithdrawal must apply the ledger append and the setting update as
// one atomic unit; a transaction row without the matching balance update is
// an invariant violation.
type Store interface {
	ListEnabledSettings(ctx context.Context) ([]*savings.ShopSavingsSetting, error)
	SalesProfitSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error)
	ExpenseSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error)
	RecordDeposit(ctx context.Context, setting *savings.ShopSavingsSetting, txn *savings.SavingsTransaction) error
	RecordWithdrawal(ctx context.Context, setting *savings.ShopSavingsSetting, txn *savings.SavingsTransaction) error
}

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

// ProcessDaily posts yesterday's savings deposit for every shop with savings
// enabled, then runs the conditional auto-withdrawal. Shops are processed
// independently; one shop's failure is counted and the run continues.
func (s *Service) ProcessDaily(ctx context.Context, now time.Time) (*savings.RunReport, error) {
	settings, err := s.store.ListEnabledSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled savings settings: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	report := &savings.RunReport{TotalSaved: decimal.Zero}

	for _, setting := range settings {
		saved, withdrew, err := s.processShop(ctx, setting, yesterday, today, now)
		if err != nil {
			report.Failed++
			s.logger.Error("savings processing failed for shop",
				zap.Int64("shop_id", setting.ShopID),
				zap.Error(err),
			)
			continue
		}
		if saved.IsZero() {
			report.Skipped++
			continue
		}
		report.Processed++
		report.TotalSaved = report.TotalSaved.Add(saved)
		if withdrew {
			report.Withdrawn++
		}
	}

	return report, nil
}

// processShop returns the amount deposited (zero means the shop was skipped)
// and whether an auto-withdrawal ran.
func (s *Service) processShop(ctx context.Context, setting *savings.ShopSavingsSetting, from, to, now time.Time) (decimal.Decimal, bool, error) {
	salesProfit, err := s.store.SalesProfitSum(ctx, setting.ShopID, from, to)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to sum sales profit: %w", err)
	}

	expenses, err := s.store.ExpenseSum(ctx, setting.ShopID, from, to)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to sum expenses: %w", err)
	}

	dailyProfit := ledger.DailyProfit(salesProfit, expenses)
	if dailyProfit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false, nil
	}

	amount := ledger.SavingsAmount(setting, dailyProfit)
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false, nil
	}

	deposit := &savings.SavingsTransaction{
		Reference:       ulid.Make().String(),
		ShopID:          setting.ShopID,
		Type:            savings.TxDeposit,
		Amount:          amount,
		BalanceBefore:   setting.CurrentBalance,
		BalanceAfter:    setting.CurrentBalance.Add(amount),
		TransactionDate: now,
		DailyProfit:     decimal.NullDecimal{Decimal: dailyProfit, Valid: true},
		IsAutomatic:     true,
		Description:     fmt.Sprintf("Daily savings for %s", from.Format("2006-01-02")),
	}

	setting.CurrentBalance = deposit.BalanceAfter
	setting.TotalSaved = setting.TotalSaved.Add(amount)
	setting.LastSavingsDate.Time = now
	setting.LastSavingsDate.Valid = true

	if err := s.store.RecordDeposit(ctx, setting, deposit); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to record deposit: %w", err)
	}

	s.logger.Info("savings deposit posted",
		zap.Int64("shop_id", setting.ShopID),
		zap.String("reference", deposit.Reference),
		zap.String("amount", amount.String()),
		zap.String("daily_profit", dailyProfit.String()),
	)

	if !ledger.WithdrawalDue(setting, now) {
		return amount, false, nil
	}

	if err := s.withdraw(ctx, setting, now); err != nil {
		// The deposit committed; a failed withdrawal is its own failure.
		s.logger.Error("auto-withdrawal failed",
			zap.Int64("shop_id", setting.ShopID),
			zap.Error(err),
		)
		return amount, false, nil
	}

	return amount, true, nil
}

// withdraw drains the shop's balance to zero in a single atomic step.
func (s *Service) withdraw(ctx context.Context, setting *savings.ShopSavingsSetting, now time.Time) error {
	amount := setting.CurrentBalance

	withdrawal := &savings.SavingsTransaction{
		Reference:       ulid.Make().String(),
		ShopID:          setting.ShopID,
		Type:            savings.TxWithdrawal,
		Amount:          amount,
		BalanceBefore:   amount,
		BalanceAfter:    decimal.Zero,
		TransactionDate: now,
		IsAutomatic:     true,
		Description:     fmt.Sprintf("Automatic %s withdrawal", setting.WithdrawalFrequency),
	}

	setting.CurrentBalance = decimal.Zero
	setting.TotalWithdrawn = setting.TotalWithdrawn.Add(amount)
	setting.LastWithdrawalDate.Time = now
	setting.LastWithdrawalDate.Valid = true

	if err := s.store.RecordWithdrawal(ctx, setting, withdrawal); err != nil {
		return err
	}

	s.logger.Info("auto-withdrawal posted",
		zap.Int64("shop_id", setting.ShopID),
		zap.String("reference", withdrawal.Reference),
		zap.String("amount", amount.String()),
	)
	return nil
}
