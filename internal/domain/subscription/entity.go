// internal/domain/subscription/entity.go
package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan string

const (
	PlanBronze Plan = "bronze"
	PlanSilver Plan = "silver"
	PlanGold   Plan = "gold"
)

// DurationDays returns how far a renewal pushes expires_at forward.
func (p Plan) DurationDays() int {
	switch p {
	case PlanBronze:
		return 30
	case PlanSilver:
		return 90
	case PlanGold:
		return 365
	default:
		return 30
	}
}

type BillingType string

const (
	BillingMonthly   BillingType = "monthly"
	BillingQuarterly BillingType = "quarterly"
	BillingYearly    BillingType = "yearly"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Subscription belongs to exactly one shop. The expiry sweep is the only
// writer of Status; renewal moves ExpiresAt forward without touching Status.
type Subscription struct {
	ID        int64           `json:"id" db:"id"`
	ShopID    int64           `json:"shop_id" db:"shop_id"`
	Plan      Plan            `json:"plan" db:"plan"`
	Type      BillingType     `json:"type" db:"type"`
	Status    Status          `json:"status" db:"status"`
	Price     decimal.Decimal `json:"price" db:"price"`
	AutoRenew bool            `json:"auto_renew" db:"auto_renew"`
	ExpiresAt time.Time       `json:"expires_at" db:"expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined from shops for sweep notifications
	ShopName  string `json:"shop_name,omitempty" db:"shop_name"`
	ShopPhone string `json:"shop_phone,omitempty" db:"shop_phone"`
}
