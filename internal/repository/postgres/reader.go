package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, amount, category, occurred_on, description, tags, payment_method, is_recurring, created_at, updated_at`

const categoryColumns = `name, description, color, default_budget, created_at`

const budgetColumns = `category, cadence, amount, alert_threshold, created_at, updated_at`

// reader implements domain.LedgerReader over a read transaction
type reader struct {
	q querier
}

func (r *reader) QueryTransactions(ctx context.Context, dr domain.DateRange, categoryKey string) ([]*domain.Transaction, error) {
	if categoryKey == "" {
		return queryTransactions(ctx, r.q,
			`SELECT `+transactionColumns+` FROM transactions
			 WHERE occurred_on >= $1 AND occurred_on < $2
			 ORDER BY occurred_on, id`,
			dr.Start, dr.End)
	}
	return queryTransactions(ctx, r.q,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE occurred_on >= $1 AND occurred_on < $2 AND category_key = $3
		 ORDER BY occurred_on, id`,
		dr.Start, dr.End, domain.NormalizeCategoryName(categoryKey))
}

func (r *reader) ListRecurringTransactions(ctx context.Context, before time.Time) ([]*domain.Transaction, error) {
	return queryTransactions(ctx, r.q,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE is_recurring AND occurred_on < $1
		 ORDER BY occurred_on, id`,
		before)
}

func (r *reader) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return listCategories(ctx, r.q)
}

func (r *reader) ListBudgets(ctx context.Context) ([]*domain.Budget, error) {
	return listBudgets(ctx, r.q)
}

func queryTransactions(ctx context.Context, q querier, sql string, args ...any) ([]*domain.Transaction, error) {
	rows, err := q.Query(ctx, sql, args...)
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

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx     domain.Transaction
		amount pgtype.Numeric
		method string
	)
	err := row.Scan(&tx.ID, &amount, &tx.Category, &tx.OccurredOn, &tx.Description, &tx.Tags,
		&method, &tx.IsRecurring, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.Amount = pgNumericToDecimal(amount)
	tx.OccurredOn = tx.OccurredOn.UTC()
	tx.PaymentMethod = domain.PaymentMethod(method)
	return &tx, nil
}

func listCategories(ctx context.Context, q querier) ([]*domain.Category, error) {
	rows, err := q.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name_key`)
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

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c             domain.Category
		defaultBudget pgtype.Numeric
	)
	if err := row.Scan(&c.Name, &c.Description, &c.Color, &defaultBudget, &c.CreatedAt); err != nil {
		return nil, err
	}
	if defaultBudget.Valid {
		d := pgNumericToDecimal(defaultBudget)
		c.DefaultBudget = &d
	}
	return &c, nil
}

func listBudgets(ctx context.Context, q querier) ([]*domain.Budget, error) {
	rows, err := q.Query(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY category_key, cadence`)
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

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b                 domain.Budget
		cadence           string
		amount, threshold pgtype.Numeric
	)
	if err := row.Scan(&b.Category, &cadence, &amount, &threshold, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Cadence = domain.BudgetCadence(cadence)
	b.Amount = pgNumericToDecimal(amount)
	b.AlertThreshold = pgNumericToDecimal(threshold)
	return &b, nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func optionalNumeric(d *decimal.Decimal) (pgtype.Numeric, error) {
	if d == nil {
		return pgtype.Numeric{}, nil
	}
	return decimalToPgNumeric(*d)
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
