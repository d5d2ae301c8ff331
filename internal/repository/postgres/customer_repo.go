// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"fmt"

	"duka-service/internal/domain/customer"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// ListDebtors retrieves customers owing more than minDebt who have a phone
// number on file.
func (r *CustomerRepository) ListDebtors(ctx context.Context, minDebt decimal.Decimal) ([]*customer.Customer, error) {
	query := `
		SELECT c.id, c.shop_id, c.name, c.phone, c.current_debt,
		       c.created_at, c.updated_at, s.name
		FROM customers c
		JOIN shops s ON s.id = c.shop_id
		WHERE c.current_debt > $1 AND c.phone IS NOT NULL
		ORDER BY c.shop_id, c.id
	`

	rows, err := r.db.Query(ctx, query, minDebt)
	if err != nil {
		return nil, fmt.Errorf("failed to query debtors: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer
	for rows.Next() {
		var c customer.Customer
		err := rows.Scan(
			&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.CurrentDebt,
			&c.CreatedAt, &c.UpdatedAt, &c.ShopName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}

	return customers, nil
}
