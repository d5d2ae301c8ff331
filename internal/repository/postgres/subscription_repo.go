// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"duka-service/internal/domain/subscription"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	sub.id, sub.shop_id, sub.plan, sub.type, sub.status, sub.price,
	sub.auto_renew, sub.expires_at, sub.created_at, sub.updated_at,
	s.name, COALESCE(s.phone, '')
`

// FindExpired retrieves active subscriptions whose expiry has passed.
func (r *SubscriptionRepository) FindExpired(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions sub
		JOIN shops s ON s.id = sub.shop_id
		WHERE sub.status = 'active' AND sub.expires_at < $1
		ORDER BY sub.id
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// FindExpiringBetween retrieves active subscriptions with expiry inside
// [from, to).
func (r *SubscriptionRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions sub
		JOIN shops s ON s.id = sub.shop_id
		WHERE sub.status = 'active' AND sub.expires_at >= $1 AND sub.expires_at < $2
		ORDER BY sub.id
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// FindDueForRenewal retrieves active auto-renew subscriptions with expiry
// inside [from, to].
func (r *SubscriptionRepository) FindDueForRenewal(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions sub
		JOIN shops s ON s.id = sub.shop_id
		WHERE sub.status = 'active' AND sub.auto_renew = true
		  AND sub.expires_at >= $1 AND sub.expires_at <= $2
		ORDER BY sub.id
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query renewable subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// MarkExpired transitions a subscription to expired. The status guard keeps
// re-runs idempotent.
func (r *SubscriptionRepository) MarkExpired(ctx context.Context, id int64, now time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status = 'active'
	`

	if _, err := r.db.Exec(ctx, query, id, now); err != nil {
		return fmt.Errorf("failed to mark subscription expired: %w", err)
	}

	return nil
}

// ExtendExpiry moves expires_at forward, but only while the row is still
// inside the renewal window (expires_at <= notAfter). Returns whether the
// update applied; a concurrent run that already extended the row leaves
// nothing to do.
func (r *SubscriptionRepository) ExtendExpiry(ctx context.Context, id int64, newExpiresAt, notAfter, now time.Time) (bool, error) {
	query := `
		UPDATE subscriptions
		SET expires_at = $2, updated_at = $4
		WHERE id = $1 AND status = 'active' AND expires_at <= $3
	`

	result, err := r.db.Exec(ctx, query, id, newExpiresAt, notAfter, now)
	if err != nil {
		return false, fmt.Errorf("failed to extend subscription expiry: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanSubscriptions(rows pgx.Rows) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription

	for rows.Next() {
		var sub subscription.Subscription
		err := rows.Scan(
			&sub.ID, &sub.ShopID, &sub.Plan, &sub.Type, &sub.Status, &sub.Price,
			&sub.AutoRenew, &sub.ExpiresAt, &sub.CreatedAt, &sub.UpdatedAt,
			&sub.ShopName, &sub.ShopPhone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}

	return subs, nil
}
