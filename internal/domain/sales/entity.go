// internal/domain/sales/entity.go
package sales

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a financial record. ConvertedToExpenseAt is the idempotency marker
// for the receivables write-off sweep: once set, the sale is permanently
// excluded from future sweeps.
type Sale struct {
	ID                   int64           `json:"id" db:"id"`
	ShopID               int64           `json:"shop_id" db:"shop_id"`
	CustomerID           sql.NullInt64   `json:"customer_id,omitempty" db:"customer_id"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	DebtAmount           decimal.Decimal `json:"debt_amount" db:"debt_amount"`
	ProfitAmount         decimal.Decimal `json:"profit_amount" db:"profit_amount"`
	SaleDate             time.Time       `json:"sale_date" db:"sale_date"`
	ConvertedToExpenseAt sql.NullTime    `json:"converted_to_expense_at,omitempty" db:"converted_to_expense_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	CategoryBadDebt = "bad_debt"
)

// Expense records money out. Bad-debt expenses reference the sale they
// wrote off.
type Expense struct {
	ID          int64           `json:"id" db:"id"`
	ShopID      int64           `json:"shop_id" db:"shop_id"`
	SaleID      sql.NullInt64   `json:"sale_id,omitempty" db:"sale_id"`
	Category    string          `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	ExpenseDate time.Time       `json:"expense_date" db:"expense_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WriteOffReport summarizes one receivables write-off pass.
type WriteOffReport struct {
	Scanned   int             `json:"scanned"`
	Converted int             `json:"converted"`
	Failed    int             `json:"failed"`
	Total     decimal.Decimal `json:"total_written_off"`
}
