// internal/domain/savings/entity.go
package savings

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type SavingsType string

const (
	TypePercentage SavingsType = "percentage"
	TypeFixed      SavingsType = "fixed"
)

type WithdrawalFrequency string

const (
	WithdrawDaily   WithdrawalFrequency = "daily"
	WithdrawWeekly  WithdrawalFrequency = "weekly"
	WithdrawMonthly WithdrawalFrequency = "monthly"
)

// ShopSavingsSetting is the single active savings configuration for a shop.
// Invariant: CurrentBalance = TotalSaved - TotalWithdrawn after every
// transaction, and CurrentBalance >= 0. Mutated only by the savings
// scheduler.
type ShopSavingsSetting struct {
	ID                      int64               `json:"id" db:"id"`
	ShopID                  int64               `json:"shop_id" db:"shop_id"`
	IsEnabled               bool                `json:"is_enabled" db:"is_enabled"`
	SavingsType             SavingsType         `json:"savings_type" db:"savings_type"`
	SavingsPercentage       decimal.Decimal     `json:"savings_percentage" db:"savings_percentage"`
	FixedAmount             decimal.Decimal     `json:"fixed_amount" db:"fixed_amount"`
	CurrentBalance          decimal.Decimal     `json:"current_balance" db:"current_balance"`
	TotalSaved              decimal.Decimal     `json:"total_saved" db:"total_saved"`
	TotalWithdrawn          decimal.Decimal     `json:"total_withdrawn" db:"total_withdrawn"`
	LastSavingsDate         sql.NullTime        `json:"last_savings_date,omitempty" db:"last_savings_date"`
	AutoWithdraw            bool                `json:"auto_withdraw" db:"auto_withdraw"`
	WithdrawalFrequency     WithdrawalFrequency `json:"withdrawal_frequency" db:"withdrawal_frequency"`
	MinimumWithdrawalAmount decimal.Decimal     `json:"minimum_withdrawal_amount" db:"minimum_withdrawal_amount"`
	LastWithdrawalDate      sql.NullTime        `json:"last_withdrawal_date,omitempty" db:"last_withdrawal_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined from shops for notifications
	ShopName  string `json:"shop_name,omitempty" db:"shop_name"`
	ShopPhone string `json:"shop_phone,omitempty" db:"shop_phone"`
}

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
)

// SavingsTransaction is an immutable, append-only ledger entry. Invariant:
// BalanceAfter = BalanceBefore + Amount for deposits and
// BalanceBefore - Amount for withdrawals. Never updated or deleted.
type SavingsTransaction struct {
	ID              int64               `json:"id" db:"id"`
	Reference       string              `json:"reference" db:"reference"`
	ShopID          int64               `json:"shop_id" db:"shop_id"`
	Type            TransactionType     `json:"type" db:"type"`
	Amount          decimal.Decimal     `json:"amount" db:"amount"`
	BalanceBefore   decimal.Decimal     `json:"balance_before" db:"balance_before"`
	BalanceAfter    decimal.Decimal     `json:"balance_after" db:"balance_after"`
	TransactionDate time.Time           `json:"transaction_date" db:"transaction_date"`
	DailyProfit     decimal.NullDecimal `json:"daily_profit,omitempty" db:"daily_profit"`
	IsAutomatic     bool                `json:"is_automatic" db:"is_automatic"`
	Description     string              `json:"description" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
