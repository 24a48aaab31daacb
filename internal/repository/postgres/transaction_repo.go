package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (amount, category, category_key, occurred_on, description, tags, payment_method, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+transactionColumns,
		amount, tx.Category, tx.CategoryKey(), tx.OccurredOn, tx.Description,
		tagsOrEmpty(tx.Tags), string(tx.PaymentMethod), tx.IsRecurring,
	)
	return scanTransaction(row)
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// List retrieves transactions matching filters, newest first
func (r *TransactionRepository) List(ctx context.Context, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.Range != nil {
		where = append(where, `occurred_on >= `+arg(filters.Range.Start), `occurred_on < `+arg(filters.Range.End))
	}
	if filters.Category != "" {
		where = append(where, `category_key = `+arg(domain.NormalizeCategoryName(filters.Category)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY occurred_on DESC, id DESC LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg(filters.Offset)

	return queryTransactions(ctx, r.pool, query, args...)
}

// Search finds transactions whose description contains keyword, case-insensitively
func (r *TransactionRepository) Search(ctx context.Context, keyword string, limit int) ([]*domain.Transaction, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	return queryTransactions(ctx, r.pool,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE description ILIKE $1 ESCAPE '\'
		 ORDER BY occurred_on DESC, id DESC LIMIT $2`,
		pattern, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Update overwrites the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET amount = $1, category = $2, category_key = $3, occurred_on = $4, description = $5,
		    tags = $6, payment_method = $7, is_recurring = $8, updated_at = now()
		WHERE id = $9
		RETURNING `+transactionColumns,
		amount, tx.Category, tx.CategoryKey(), tx.OccurredOn, tx.Description,
		tagsOrEmpty(tx.Tags), string(tx.PaymentMethod), tx.IsRecurring, tx.ID,
	)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Stats summarizes the whole ledger
func (r *TransactionRepository) Stats(ctx context.Context) (*domain.TransactionStats, error) {
	var (
		stats       domain.TransactionStats
		total       pgtype.Numeric
		first, last pgtype.Date
	)
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), MIN(occurred_on), MAX(occurred_on),
		       (SELECT COUNT(*) FROM categories), (SELECT COUNT(*) FROM budgets)
		FROM transactions`,
	).Scan(&stats.Count, &total, &first, &last, &stats.CategoryCount, &stats.BudgetCount)
	if err != nil {
		return nil, err
	}

	stats.TotalAmount = pgNumericToDecimal(total)
	if first.Valid {
		t := first.Time.UTC()
		stats.FirstDate = &t
	}
	if last.Valid {
		t := last.Time.UTC()
		stats.LastDate = &t
	}
	return &stats, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
