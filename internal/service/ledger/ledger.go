// internal/service/ledger/ledger.go
package ledger

import (
	"time"

	"duka-service/internal/domain/savings"

	"github.com/shopspring/decimal"
)

// Pure balance arithmetic for the savings scheduler. No side effects here;
// everything is a function of its arguments.

var hundred = decimal.NewFromInt(100)

// DailyProfit is the net profit for a day, floored at zero. A loss day never
// produces a negative deposit.
func DailyProfit(salesProfit, expenses decimal.Decimal) decimal.Decimal {
	profit := salesProfit.Sub(expenses)
	if profit.IsNegative() {
		return decimal.Zero
	}
	return profit
}

// SavingsAmount derives the deposit for a day's profit from the shop's
// configuration. In fixed mode the amount is clamped to the profit: a shop
// never saves more than it earned. A zero or negative result means no
// transaction is created.
func SavingsAmount(setting *savings.ShopSavingsSetting, dailyProfit decimal.Decimal) decimal.Decimal {
	if dailyProfit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch setting.SavingsType {
	case savings.TypePercentage:
		return dailyProfit.Mul(setting.SavingsPercentage).Div(hundred)
	case savings.TypeFixed:
		if setting.FixedAmount.GreaterThan(dailyProfit) {
			return dailyProfit
		}
		return setting.FixedAmount
	default:
		return decimal.Zero
	}
}

// WithdrawalDue reports whether an automatic withdrawal should run after a
// deposit. Due when auto-withdraw is enabled, the configured frequency has
// elapsed since the last withdrawal (a shop that never withdrew is
// immediately due), and the balance clears the minimum. A zero minimum means
// no floor.
func WithdrawalDue(setting *savings.ShopSavingsSetting, now time.Time) bool {
	if !setting.AutoWithdraw {
		return false
	}
	if setting.CurrentBalance.LessThanOrEqual(decimal.Zero) {
		return false
	}
	if setting.MinimumWithdrawalAmount.IsPositive() &&
		setting.CurrentBalance.LessThan(setting.MinimumWithdrawalAmount) {
		return false
	}
	if !setting.LastWithdrawalDate.Valid {
		return true
	}
	return !now.Before(nextWithdrawal(setting.LastWithdrawalDate.Time, setting.WithdrawalFrequency))
}

func nextWithdrawal(last time.Time, freq savings.WithdrawalFrequency) time.Time {
	switch freq {
	case savings.WithdrawDaily:
		return last.AddDate(0, 0, 1)
	case savings.WithdrawWeekly:
		return last.AddDate(0, 0, 7)
	case savings.WithdrawMonthly:
		return last.AddDate(0, 1, 0)
	default:
		return last.AddDate(0, 1, 0)
	}
}
