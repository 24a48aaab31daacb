package postgres

import (
	"context"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Upsert stores the budget, replacing the one with the same scope and cadence
func (r *BudgetRepository) Upsert(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(b.Amount)
	if err != nil {
		return nil, err
	}
	threshold, err := decimalToPgNumeric(b.AlertThreshold)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (category_key, category, cadence, amount, alert_threshold)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category_key, cadence) DO UPDATE SET
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			alert_threshold = EXCLUDED.alert_threshold,
			updated_at = now()
		RETURNING `+budgetColumns,
		b.ScopeKey(), b.Category, string(b.Cadence), amount, threshold,
	)
	return scanBudget(row)
}

// List retrieves all budgets
func (r *BudgetRepository) List(ctx context.Context) ([]*domain.Budget, error) {
	return listBudgets(ctx, r.pool)
}

// Delete removes the budget for a scope and cadence
func (r *BudgetRepository) Delete(ctx context.Context, categoryKey string, cadence domain.BudgetCadence) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE category_key = $1 AND cadence = $2`,
		domain.NormalizeCategoryName(categoryKey), string(cadence))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
