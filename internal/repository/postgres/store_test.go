package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to TEST_DATABASE_URL and empties the ledger tables.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.pool.Exec(ctx, `TRUNCATE transactions, budgets RESTART IDENTITY`)
	require.NoError(t, err)
	keys := make([]string, 0, len(domain.DefaultCategories))
	for _, c := range domain.DefaultCategories {
		keys = append(keys, c.Key())
	}
	_, err = store.pool.Exec(ctx, `DELETE FROM categories WHERE NOT (name_key = ANY($1))`, keys)
	require.NoError(t, err)
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addTx(t *testing.T, store *Store, amount, category string, date time.Time, recurring bool) *domain.Transaction {
	t.Helper()
	tx, err := store.Transactions().Create(context.Background(), &domain.Transaction{
		Amount:        decimal.RequireFromString(amount),
		Category:      category,
		OccurredOn:    date,
		Description:   category + " purchase",
		PaymentMethod: domain.PaymentMethodCash,
		IsRecurring:   recurring,
	})
	require.NoError(t, err)
	return tx
}

func TestStore_TransactionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := addTx(t, store, "19.99", "Shopping", day(2024, time.March, 9), true)
	got, err := store.Transactions().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.99", got.Amount.StringFixed(2))
	assert.True(t, got.OccurredOn.Equal(day(2024, time.March, 9)))
	assert.Empty(t, got.Tags)
	assert.True(t, got.IsRecurring)

	_, err = store.Transactions().GetByID(ctx, created.ID+1000)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestStore_ViewQueriesOneRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	addTx(t, store, "10.00", "Travel", day(2024, time.January, 5), false)
	addTx(t, store, "20.00", "Travel", day(2024, time.January, 31), false)
	addTx(t, store, "30.00", "Health", day(2024, time.February, 1), false)

	err := store.View(ctx, func(r domain.LedgerReader) error {
		txs, err := r.QueryTransactions(ctx, domain.DateRange{Start: day(2024, time.January, 1), End: day(2024, time.February, 1)}, "")
		require.NoError(t, err)
		assert.Len(t, txs, 2)

		travel, err := r.QueryTransactions(ctx, domain.DateRange{Start: day(2024, time.January, 1), End: day(2024, time.March, 1)}, "TRAVEL")
		require.NoError(t, err)
		assert.Len(t, travel, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_CategoryConflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Categories().Create(ctx, &domain.Category{Name: "Pets", Color: domain.DefaultCategoryColor})
	require.NoError(t, err)
	_, err = store.Categories().Create(ctx, &domain.Category{Name: "pets", Color: domain.DefaultCategoryColor})
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyExists)
}

func TestStore_BudgetUpsertAndStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, amount := range []int64{500, 650} {
		_, err := store.Budgets().Upsert(ctx, &domain.Budget{
			Amount: decimal.NewFromInt(amount), Cadence: domain.BudgetCadenceMonthly, AlertThreshold: domain.DefaultAlertThreshold,
		})
		require.NoError(t, err)
	}
	budgets, err := store.Budgets().List(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "650", budgets[0].Amount.String())

	addTx(t, store, "0.10", "Travel", day(2024, time.January, 1), false)
	addTx(t, store, "0.20", "Travel", day(2024, time.March, 1), false)

	stats, err := store.Transactions().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Count)
	assert.Equal(t, "0.30", stats.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, stats.BudgetCount)
	require.NotNil(t, stats.LastDate)
	assert.True(t, stats.LastDate.Equal(day(2024, time.March, 1)))
}
