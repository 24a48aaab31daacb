package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using SQLite
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (amount, category, category_key, occurred_on, description, tags, payment_method, is_recurring, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Amount.String(), tx.Category, tx.CategoryKey(), formatDate(tx.OccurredOn),
		tx.Description, tags, string(tx.PaymentMethod), boolToInt(tx.IsRecurring),
		formatTimestamp(now), formatTimestamp(now),
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	if filters.Range != nil {
		where = append(where, `occurred_on >= ?`, `occurred_on < ?`)
		args = append(args, formatDate(filters.Range.Start), formatDate(filters.Range.End))
	}
	if filters.Category != "" {
		where = append(where, `category_key = ?`)
		args = append(args, domain.NormalizeCategoryName(filters.Category))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY occurred_on DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filters.Limit, filters.Offset)

	return queryTransactions(ctx, r.db, query, args...)
}

// Search finds transactions whose description contains keyword, case-insensitively
func (r *TransactionRepository) Search(ctx context.Context, keyword string, limit int) ([]*domain.Transaction, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	return queryTransactions(ctx, r.db,
		`SELECT `+transactionColumns+` FROM transactions WHERE description LIKE ? ESCAPE '\' ORDER BY occurred_on DESC, id DESC LIMIT ?`,
		pattern, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Update overwrites the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, category = ?, category_key = ?, occurred_on = ?, description = ?,
		    tags = ?, payment_method = ?, is_recurring = ?, updated_at = ?
		WHERE id = ?`,
		tx.Amount.String(), tx.Category, tx.CategoryKey(), formatDate(tx.OccurredOn), tx.Description,
		tags, string(tx.PaymentMethod), boolToInt(tx.IsRecurring), formatTimestamp(time.Now()),
		tx.ID,
	)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, domain.ErrTransactionNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tx.ID)
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrTransactionNotFound)
}

// Stats summarizes the whole ledger
func (r *TransactionRepository) Stats(ctx context.Context) (*domain.TransactionStats, error) {
	stats := &domain.TransactionStats{TotalAmount: decimal.Zero}

	var first, last sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(occurred_on), MAX(occurred_on) FROM transactions`,
	).Scan(&stats.Count, &first, &last)
	if err != nil {
		return nil, err
	}
	if first.Valid {
		if t, err := time.Parse(time.DateOnly, first.String); err == nil {
			stats.FirstDate = &t
		}
	}
	if last.Valid {
		if t, err := time.Parse(time.DateOnly, last.String); err == nil {
			stats.LastDate = &t
		}
	}

	// Amounts are stored as exact decimal text, so they are summed here rather than by SUM().
	rows, err := r.db.QueryContext(ctx, `SELECT amount FROM transactions`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			rows.Close()
			return nil, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("stats amount: %w", err)
		}
		stats.TotalAmount = stats.TotalAmount.Add(d)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM categories), (SELECT COUNT(*) FROM budgets)`,
	).Scan(&stats.CategoryCount, &stats.BudgetCount)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
