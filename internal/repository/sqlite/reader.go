package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, amount, category, occurred_on, description, tags, payment_method, is_recurring, created_at, updated_at`

const categoryColumns = `name, description, color, default_budget, created_at`

const budgetColumns = `category, cadence, amount, alert_threshold, created_at, updated_at`

// reader implements domain.LedgerReader over a read transaction
type reader struct {
	q queryer
}

func (r *reader) QueryTransactions(ctx context.Context, dr domain.DateRange, categoryKey string) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE occurred_on >= ? AND occurred_on < ?`
	args := []any{formatDate(dr.Start), formatDate(dr.End)}
	if categoryKey != "" {
		query += ` AND category_key = ?`
		args = append(args, domain.NormalizeCategoryName(categoryKey))
	}
	query += ` ORDER BY occurred_on, id`
	return queryTransactions(ctx, r.q, query, args...)
}

func (r *reader) ListRecurringTransactions(ctx context.Context, before time.Time) ([]*domain.Transaction, error) {
	return queryTransactions(ctx, r.q,
		`SELECT `+transactionColumns+` FROM transactions WHERE is_recurring = 1 AND occurred_on < ? ORDER BY occurred_on, id`,
		formatDate(before))
}

func (r *reader) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return listCategories(ctx, r.q)
}

func (r *reader) ListBudgets(ctx context.Context) ([]*domain.Budget, error) {
	return listBudgets(ctx, r.q)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func queryTransactions(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func scanTransaction(s rowScanner) (*domain.Transaction, error) {
	var (
		tx                           domain.Transaction
		amount, occurredOn, tags     string
		method, createdAt, updatedAt string
		isRecurring                  int
	)
	if err := s.Scan(&tx.ID, &amount, &tx.Category, &occurredOn, &tx.Description, &tags, &method, &isRecurring, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("transaction %d amount: %w", tx.ID, err)
	}
	if tx.OccurredOn, err = time.Parse(time.DateOnly, occurredOn); err != nil {
		return nil, fmt.Errorf("transaction %d date: %w", tx.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &tx.Tags); err != nil {
		return nil, fmt.Errorf("transaction %d tags: %w", tx.ID, err)
	}
	tx.PaymentMethod = domain.PaymentMethod(method)
	tx.IsRecurring = isRecurring != 0
	tx.CreatedAt = parseTimestamp(createdAt)
	tx.UpdatedAt = parseTimestamp(updatedAt)
	return &tx, nil
}

func listCategories(ctx context.Context, q queryer) ([]*domain.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCategory(s rowScanner) (*domain.Category, error) {
	var (
		c             domain.Category
		defaultBudget sql.NullString
		createdAt     string
	)
	if err := s.Scan(&c.Name, &c.Description, &c.Color, &defaultBudget, &createdAt); err != nil {
		return nil, err
	}
	if defaultBudget.Valid && defaultBudget.String != "" {
		d, err := decimal.NewFromString(defaultBudget.String)
		if err != nil {
			return nil, fmt.Errorf("category %q default budget: %w", c.Name, err)
		}
		c.DefaultBudget = &d
	}
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}

func listBudgets(ctx context.Context, q queryer) ([]*domain.Budget, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY category_key, cadence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBudget(s rowScanner) (*domain.Budget, error) {
	var (
		b                          domain.Budget
		cadence, amount, threshold string
		createdAt, updatedAt       string
	)
	if err := s.Scan(&b.Category, &cadence, &amount, &threshold, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("budget amount: %w", err)
	}
	if b.AlertThreshold, err = decimal.NewFromString(threshold); err != nil {
		return nil, fmt.Errorf("budget threshold: %w", err)
	}
	b.Cadence = domain.BudgetCadence(cadence)
	b.CreatedAt = parseTimestamp(createdAt)
	b.UpdatedAt = parseTimestamp(updatedAt)
	return &b, nil
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
