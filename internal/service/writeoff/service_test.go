package writeoff

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"duka-service/internal/domain/sales"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore applies the same conditional-update semantics as the SQL store:
// a sale already carrying the conversion marker fails the write-off.
type fakeStore struct {
	sales    map[int64]*sales.Sale
	expenses []*sales.Expense
	failIDs  map[int64]error
}

func newFakeStore(items ...*sales.Sale) *fakeStore {
	s := &fakeStore{
		sales:   make(map[int64]*sales.Sale),
		failIDs: make(map[int64]error),
	}
	for _, sale := range items {
		s.sales[sale.ID] = sale
	}
	return s
}

func (s *fakeStore) ListOverdueCreditSales(_ context.Context, cutoff time.Time) ([]*sales.Sale, error) {
	var out []*sales.Sale
	for _, sale := range s.sales {
		if !sale.ConvertedToExpenseAt.Valid && sale.DebtAmount.IsPositive() && !sale.SaleDate.After(cutoff) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (s *fakeStore) WriteOff(_ context.Context, sale *sales.Sale, expense *sales.Expense) error {
	if err := s.failIDs[sale.ID]; err != nil {
		return err
	}
	if sale.ConvertedToExpenseAt.Valid {
		return fmt.Errorf("sale %d already converted", sale.ID)
	}
	sale.ConvertedToExpenseAt.Time = expense.ExpenseDate
	sale.ConvertedToExpenseAt.Valid = true
	s.expenses = append(s.expenses, expense)
	return nil
}

func creditSale(id int64, debt string, saleDate time.Time) *sales.Sale {
	return &sales.Sale{
		ID:         id,
		ShopID:     id * 10,
		DebtAmount: decimal.RequireFromString(debt),
		SaleDate:   saleDate,
	}
}

func TestConvertUnpaidSales(t *testing.T) {
	now := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)

	t.Run("converts sales older than a year", func(t *testing.T) {
		old := creditSale(1, "1500", now.AddDate(-1, -1, 0))
		recent := creditSale(2, "800", now.AddDate(0, -6, 0))
		store := newFakeStore(old, recent)
		svc := NewService(store, zap.NewNop())

		report, err := svc.ConvertUnpaidSales(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, report.Scanned)
		assert.Equal(t, 1, report.Converted)
		assert.True(t, report.Total.Equal(decimal.RequireFromString("1500")))
		assert.True(t, old.ConvertedToExpenseAt.Valid)
		assert.False(t, recent.ConvertedToExpenseAt.Valid)

		require.Len(t, store.expenses, 1)
		exp := store.expenses[0]
		assert.Equal(t, sales.CategoryBadDebt, exp.Category)
		assert.Equal(t, old.ShopID, exp.ShopID)
		assert.True(t, exp.SaleID.Valid)
		assert.Equal(t, old.ID, exp.SaleID.Int64)
		assert.True(t, exp.Amount.Equal(old.DebtAmount))
		assert.True(t, exp.ExpenseDate.Equal(now))
	})

	t.Run("re-run never bills the same sale twice", func(t *testing.T) {
		old := creditSale(1, "1500", now.AddDate(-2, 0, 0))
		store := newFakeStore(old)
		svc := NewService(store, zap.NewNop())

		first, err := svc.ConvertUnpaidSales(context.Background(), now)
		require.NoError(t, err)
		require.Equal(t, 1, first.Converted)

		second, err := svc.ConvertUnpaidSales(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Scanned)
		assert.Equal(t, 0, second.Converted)
		assert.Len(t, store.expenses, 1)
	})

	t.Run("one failing sale does not undo or block the others", func(t *testing.T) {
		a := creditSale(1, "100", now.AddDate(-2, 0, 0))
		b := creditSale(2, "200", now.AddDate(-2, 0, 0))
		c := creditSale(3, "300", now.AddDate(-2, 0, 0))
		store := newFakeStore(a, b, c)
		store.failIDs[2] = errors.New("deadlock detected")
		svc := NewService(store, zap.NewNop())

		report, err := svc.ConvertUnpaidSales(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 3, report.Scanned)
		assert.Equal(t, 2, report.Converted)
		assert.Equal(t, 1, report.Failed)
		assert.True(t, report.Total.Equal(decimal.RequireFromString("400")))
		assert.False(t, b.ConvertedToExpenseAt.Valid)
		assert.Len(t, store.expenses, 2)
	})

	t.Run("paid-off sales are never selected", func(t *testing.T) {
		paid := creditSale(1, "0", now.AddDate(-2, 0, 0))
		store := newFakeStore(paid)
		svc := NewService(store, zap.NewNop())

		report, err := svc.ConvertUnpaidSales(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Scanned)
	})
}
