// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a shop's credit customer. CurrentDebt is the running unpaid
// balance across their credit sales.
type Customer struct {
	ID          int64           `json:"id" db:"id"`
	ShopID      int64           `json:"shop_id" db:"shop_id"`
	Name        string          `json:"name" db:"name"`
	Phone       sql.NullString  `json:"phone,omitempty" db:"phone"`
	CurrentDebt decimal.Decimal `json:"current_debt" db:"current_debt"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined from shops for reminder messages
	ShopName string `json:"shop_name,omitempty" db:"shop_name"`
}

// ReminderReport summarizes one debt-reminder pass.
type ReminderReport struct {
	Scanned  int `json:"scanned"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}
