package domain

import (
	"context"
	"time"
)

// LedgerReader is the read side used to assemble reports. Every call made
// through one reader observes the same snapshot of the ledger.
type LedgerReader interface {
	// QueryTransactions returns transactions dated inside r, ordered by date then
	// insertion. An empty categoryKey matches every category.
	QueryTransactions(ctx context.Context, r DateRange, categoryKey string) ([]*Transaction, error)
	// ListRecurringTransactions returns recurring transactions dated before the given date.
	ListRecurringTransactions(ctx context.Context, before time.Time) ([]*Transaction, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	ListBudgets(ctx context.Context) ([]*Budget, error)
}

// LedgerStore is the durable ledger. Writes through the repositories are
// serialized by the store.
type LedgerStore interface {
	// View runs fn inside a single read transaction.
	View(ctx context.Context, fn func(LedgerReader) error) error
	Transactions() TransactionRepository
	Categories() CategoryRepository
	Budgets() BudgetRepository
	Close() error
}
