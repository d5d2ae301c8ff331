package subscription

import (
	"testing"
	"time"

	"duka-service/internal/domain/subscription"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func reminderSub() *subscription.Subscription {
	return &subscription.Subscription{
		Plan:     subscription.PlanSilver,
		Price:    decimal.NewFromFloat(2999.50),
		ShopName: "Kibanda Fresh",
	}
}

func TestExpiryReminderMessage(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "expires tomorrow"},
		{2, "expires in 2 days"},
		{3, "expires in 3 days"},
		{4, "expires in 4 days"},
		{7, "expires next week"},
		{14, "expires in 14 days"},
	}

	for _, tt := range tests {
		msg := ExpiryReminderMessage(reminderSub(), tt.days)
		assert.Contains(t, msg, tt.want, "days=%d", tt.days)
		assert.Contains(t, msg, "Kibanda Fresh")
		assert.Contains(t, msg, "KES 2999.50")
	}
}

func TestExpiredMessage(t *testing.T) {
	msg := ExpiredMessage(reminderSub())
	assert.Contains(t, msg, "has expired")
	assert.Contains(t, msg, "silver")
	assert.Contains(t, msg, "KES 2999.50")
}

func TestRenewedMessage(t *testing.T) {
	until := time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC)
	msg := RenewedMessage(reminderSub(), until)
	assert.Contains(t, msg, "renewed automatically")
	assert.Contains(t, msg, "09 Apr 2024")
}
