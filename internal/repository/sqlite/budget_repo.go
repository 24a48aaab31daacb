package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using SQLite
type BudgetRepository struct {
	db *sql.DB
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert stores the budget, replacing the one with the same scope and cadence
func (r *BudgetRepository) Upsert(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	now := formatTimestamp(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category_key, category, cadence, amount, alert_threshold, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (category_key, cadence) DO UPDATE SET
			category = excluded.category,
			amount = excluded.amount,
			alert_threshold = excluded.alert_threshold,
			updated_at = excluded.updated_at`,
		b.ScopeKey(), b.Category, string(b.Cadence), b.Amount.String(), b.AlertThreshold.String(), now, now,
	)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE category_key = ? AND cadence = ?`,
		b.ScopeKey(), string(b.Cadence))
	return scanBudget(row)
}

// List retrieves all budgets
func (r *BudgetRepository) List(ctx context.Context) ([]*domain.Budget, error) {
	return listBudgets(ctx, r.db)
}

// Delete removes the budget for a scope and cadence
func (r *BudgetRepository) Delete(ctx context.Context, categoryKey string, cadence domain.BudgetCadence) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE category_key = ? AND cadence = ?`,
		domain.NormalizeCategoryName(categoryKey), string(cadence))
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrBudgetNotFound)
}
