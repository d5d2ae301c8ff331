// internal/repository/postgres/sales_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"duka-service/internal/domain/sales"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type SalesRepository struct {
	db *pgxpool.Pool
}

func NewSalesRepository(db *pgxpool.Pool) *SalesRepository {
	return &SalesRepository{db: db}
}

// SalesProfitSum totals profit for a shop's sales with sale_date in
// [from, to).
func (r *SalesRepository) SalesProfitSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(profit_amount), 0)
		FROM sales
		WHERE shop_id = $1 AND sale_date >= $2 AND sale_date < $3
	`

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, shopID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales profit: %w", err)
	}

	return sum, nil
}

// ExpenseSum totals a shop's expenses with expense_date in [from, to).
func (r *SalesRepository) ExpenseSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE shop_id = $1 AND expense_date >= $2 AND expense_date < $3
	`

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, shopID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return sum, nil
}

// ListOverdueCreditSales retrieves unconverted credit sales at least as old
// as the cutoff. converted_to_expense_at IS NULL is the idempotency filter.
func (r *SalesRepository) ListOverdueCreditSales(ctx context.Context, cutoff time.Time) ([]*sales.Sale, error) {
	query := `
		SELECT id, shop_id, customer_id, total_amount, debt_amount, profit_amount,
		       sale_date, converted_to_expense_at, created_at, updated_at
		FROM sales
		WHERE converted_to_expense_at IS NULL AND debt_amount > 0 AND sale_date <= $1
		ORDER BY sale_date
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue credit sales: %w", err)
	}
	defer rows.Close()

	var result []*sales.Sale
	for rows.Next() {
		var s sales.Sale
		err := rows.Scan(
			&s.ID, &s.ShopID, &s.CustomerID, &s.TotalAmount, &s.DebtAmount, &s.ProfitAmount,
			&s.SaleDate, &s.ConvertedToExpenseAt, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		result = append(result, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}

	return result, nil
}

// WriteOff converts one sale to a bad-debt expense: the expense insert and
// the sale marker are committed together, one transaction per sale. The
// conditional update means a sale another run already converted rolls the
// whole pair back instead of billing the expense twice.
func (r *SalesRepository) WriteOff(ctx context.Context, sale *sales.Sale, expense *sales.Expense) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO expenses (shop_id, sale_id, category, amount, description, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = tx.QueryRow(
		ctx, insertQuery,
		expense.ShopID, expense.SaleID, expense.Category, expense.Amount,
		expense.Description, expense.ExpenseDate,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bad-debt expense: %w", err)
	}

	markQuery := `
		UPDATE sales
		SET converted_to_expense_at = $2, updated_at = $2
		WHERE id = $1 AND converted_to_expense_at IS NULL
	`

	result, err := tx.Exec(ctx, markQuery, sale.ID, expense.ExpenseDate)
	if err != nil {
		return fmt.Errorf("failed to mark sale converted: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("sale %d already converted", sale.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit write-off: %w", err)
	}

	return nil
}
