// internal/service/subscription/messages.go
package subscription

import (
	"fmt"
	"time"

	"duka-service/internal/domain/subscription"

	"github.com/shopspring/decimal"
)

// Reminder wording is a closed ladder of threshold bands, evaluated in
// order: tomorrow, within three days, exactly a week, then the generic
// fallback.
type reminderTier struct {
	matches func(days int) bool
	build   func(sub *subscription.Subscription, days int) string
}

var reminderTiers = []reminderTier{
	{
		matches: func(days int) bool { return days == 1 },
		build: func(sub *subscription.Subscription, _ int) string {
			return fmt.Sprintf("Hello %s, your %s subscription expires tomorrow. Renew for %s to keep your shop running.",
				sub.ShopName, sub.Plan, formatMoney(sub.Price))
		},
	},
	{
		matches: func(days int) bool { return days > 1 && days <= 3 },
		build: func(sub *subscription.Subscription, days int) string {
			return fmt.Sprintf("Hello %s, your %s subscription expires in %d days. Renew for %s to avoid interruption.",
				sub.ShopName, sub.Plan, days, formatMoney(sub.Price))
		},
	},
	{
		matches: func(days int) bool { return days == 7 },
		build: func(sub *subscription.Subscription, _ int) string {
			return fmt.Sprintf("Hello %s, your %s subscription expires next week. Renew for %s anytime before then.",
				sub.ShopName, sub.Plan, formatMoney(sub.Price))
		},
	},
}

// ExpiryReminderMessage returns the reminder wording for a subscription that
// expires in the given number of days.
func ExpiryReminderMessage(sub *subscription.Subscription, days int) string {
	for _, tier := range reminderTiers {
		if tier.matches(days) {
			return tier.build(sub, days)
		}
	}
	return fmt.Sprintf("Hello %s, your %s subscription expires in %d days. Renew for %s to keep your shop running.",
		sub.ShopName, sub.Plan, days, formatMoney(sub.Price))
}

// ExpiredMessage is sent once when the expiry sweep transitions a
// subscription to expired.
func ExpiredMessage(sub *subscription.Subscription) string {
	return fmt.Sprintf("Hello %s, your %s subscription has expired. Renew for %s to restore full access to your shop.",
		sub.ShopName, sub.Plan, formatMoney(sub.Price))
}

// RenewedMessage is sent after an automatic renewal extends the expiry.
func RenewedMessage(sub *subscription.Subscription, newExpiry time.Time) string {
	return fmt.Sprintf("Hello %s, your %s subscription has been renewed automatically. It is now valid until %s.",
		sub.ShopName, sub.Plan, newExpiry.Format("02 Jan 2006"))
}

func formatMoney(amount decimal.Decimal) string {
	return "KES " + amount.StringFixed(2)
}
