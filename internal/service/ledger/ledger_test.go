package ledger

import (
	"database/sql"
	"testing"
	"time"

	"duka-service/internal/domain/savings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDailyProfit(t *testing.T) {
	tests := []struct {
		name        string
		salesProfit string
		expenses    string
		want        string
	}{
		{"profit day", "10000", "4000", "6000"},
		{"break even", "5000", "5000", "0"},
		{"loss day floors at zero", "3000", "8000", "0"},
		{"no expenses", "2500.50", "0", "2500.5"},
		{"no sales", "0", "1200", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyProfit(d(tt.salesProfit), d(tt.expenses))
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSavingsAmount(t *testing.T) {
	tests := []struct {
		name    string
		setting *savings.ShopSavingsSetting
		profit  string
		want    string
	}{
		{
			name: "ten percent of profit",
			setting: &savings.ShopSavingsSetting{
				SavingsType:       savings.TypePercentage,
				SavingsPercentage: d("10"),
			},
			profit: "10000",
			want:   "1000",
		},
		{
			name: "fractional percentage",
			setting: &savings.ShopSavingsSetting{
				SavingsType:       savings.TypePercentage,
				SavingsPercentage: d("2.5"),
			},
			profit: "1000",
			want:   "25",
		},
		{
			name: "fixed amount within profit",
			setting: &savings.ShopSavingsSetting{
				SavingsType: savings.TypeFixed,
				FixedAmount: d("500"),
			},
			profit: "3000",
			want:   "500",
		},
		{
			name: "fixed amount clamped to profit",
			setting: &savings.ShopSavingsSetting{
				SavingsType: savings.TypeFixed,
				FixedAmount: d("5000"),
			},
			profit: "3000",
			want:   "3000",
		},
		{
			name: "zero profit saves nothing",
			setting: &savings.ShopSavingsSetting{
				SavingsType: savings.TypeFixed,
				FixedAmount: d("500"),
			},
			profit: "0",
			want:   "0",
		},
		{
			name: "unknown type saves nothing",
			setting: &savings.ShopSavingsSetting{
				SavingsType: savings.SavingsType("bogus"),
			},
			profit: "1000",
			want:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SavingsAmount(tt.setting, d(tt.profit))
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestWithdrawalDue(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)

	lastAt := func(t time.Time) sql.NullTime {
		return sql.NullTime{Time: t, Valid: true}
	}

	tests := []struct {
		name    string
		setting *savings.ShopSavingsSetting
		want    bool
	}{
		{
			name: "auto-withdraw disabled",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        false,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawDaily,
			},
			want: false,
		},
		{
			name: "zero balance",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      decimal.Zero,
				WithdrawalFrequency: savings.WithdrawDaily,
			},
			want: false,
		},
		{
			name: "balance below minimum",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:            true,
				CurrentBalance:          d("400"),
				MinimumWithdrawalAmount: d("500"),
				WithdrawalFrequency:     savings.WithdrawDaily,
			},
			want: false,
		},
		{
			name: "zero minimum means no floor",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("0.01"),
				WithdrawalFrequency: savings.WithdrawDaily,
			},
			want: true,
		},
		{
			name: "never withdrawn is immediately due",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawMonthly,
			},
			want: true,
		},
		{
			name: "daily frequency not yet elapsed",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawDaily,
				LastWithdrawalDate:  lastAt(now.Add(-12 * time.Hour)),
			},
			want: false,
		},
		{
			name: "daily frequency elapsed",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawDaily,
				LastWithdrawalDate:  lastAt(now.AddDate(0, 0, -1)),
			},
			want: true,
		},
		{
			name: "weekly frequency at six days",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawWeekly,
				LastWithdrawalDate:  lastAt(now.AddDate(0, 0, -6)),
			},
			want: false,
		},
		{
			name: "weekly frequency at seven days",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawWeekly,
				LastWithdrawalDate:  lastAt(now.AddDate(0, 0, -7)),
			},
			want: true,
		},
		{
			name: "monthly frequency elapsed",
			setting: &savings.ShopSavingsSetting{
				AutoWithdraw:        true,
				CurrentBalance:      d("1000"),
				WithdrawalFrequency: savings.WithdrawMonthly,
				LastWithdrawalDate:  lastAt(now.AddDate(0, -1, 0)),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithdrawalDue(tt.setting, now))
		})
	}
}
