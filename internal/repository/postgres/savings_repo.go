// internal/repository/postgres/savings_repo.go
package postgres

import (
	"context"
	"fmt"

	"duka-service/internal/domain/savings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SavingsRepository struct {
	db *pgxpool.Pool
}

func NewSavingsRepository(db *pgxpool.Pool) *SavingsRepository {
	return &SavingsRepository{db: db}
}

// ListEnabledSettings retrieves the savings configuration of every shop with
// savings turned on.
func (r *SavingsRepository) ListEnabledSettings(ctx context.Context) ([]*savings.ShopSavingsSetting, error) {
	query := `
		SELECT st.id, st.shop_id, st.is_enabled, st.savings_type,
		       st.savings_percentage, st.fixed_amount,
		       st.current_balance, st.total_saved, st.total_withdrawn,
		       st.last_savings_date, st.auto_withdraw, st.withdrawal_frequency,
		       st.minimum_withdrawal_amount, st.last_withdrawal_date,
		       st.created_at, st.updated_at,
		       s.name, COALESCE(s.phone, '')
		FROM shop_savings_settings st
		JOIN shops s ON s.id = st.shop_id
		WHERE st.is_enabled = true
		ORDER BY st.shop_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled savings settings: %w", err)
	}
	defer rows.Close()

	var settings []*savings.ShopSavingsSetting
	for rows.Next() {
		var st savings.ShopSavingsSetting
		err := rows.Scan(
			&st.ID, &st.ShopID, &st.IsEnabled, &st.SavingsType,
			&st.SavingsPercentage, &st.FixedAmount,
			&st.CurrentBalance, &st.TotalSaved, &st.TotalWithdrawn,
			&st.LastSavingsDate, &st.AutoWithdraw, &st.WithdrawalFrequency,
			&st.MinimumWithdrawalAmount, &st.LastWithdrawalDate,
			&st.CreatedAt, &st.UpdatedAt,
			&st.ShopName, &st.ShopPhone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan savings setting: %w", err)
		}
		settings = append(settings, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read savings settings: %w", err)
	}

	return settings, nil
}

// RecordDeposit appends the deposit transaction and applies the balance
// update in one database transaction. Partial application would break the
// current_balance = total_saved - total_withdrawn invariant.
func (r *SavingsRepository) RecordDeposit(ctx context.Context, setting *savings.ShopSavingsSetting, txn *savings.SavingsTransaction) error {
	return r.record(ctx, setting, txn)
}

// RecordWithdrawal appends the withdrawal transaction and applies the
// balance update atomically.
func (r *SavingsRepository) RecordWithdrawal(ctx context.Context, setting *savings.ShopSavingsSetting, txn *savings.SavingsTransaction) error {
	return r.record(ctx, setting, txn)
}

func (r *SavingsRepository) record(ctx context.Context, setting *savings.ShopSavingsSetting, txn *savings.SavingsTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := updateSetting(ctx, tx, setting); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit savings transaction: %w", err)
	}

	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *savings.SavingsTransaction) error {
	query := `
		INSERT INTO savings_transactions (
			reference, shop_id, type, amount, balance_before, balance_after,
			transaction_date, daily_profit, is_automatic, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		txn.Reference, txn.ShopID, txn.Type, txn.Amount, txn.BalanceBefore, txn.BalanceAfter,
		txn.TransactionDate, txn.DailyProfit, txn.IsAutomatic, txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert savings transaction: %w", err)
	}

	return nil
}

func updateSetting(ctx context.Context, tx pgx.Tx, setting *savings.ShopSavingsSetting) error {
	query := `
		UPDATE shop_savings_settings
		SET current_balance = $2, total_saved = $3, total_withdrawn = $4,
		    last_savings_date = $5, last_withdrawal_date = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(
		ctx, query,
		setting.ID, setting.CurrentBalance, setting.TotalSaved, setting.TotalWithdrawn,
		setting.LastSavingsDate, setting.LastWithdrawalDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update savings setting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("savings setting %d not found", setting.ID)
	}

	return nil
}
