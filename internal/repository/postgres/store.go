package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.LedgerStore using PostgreSQL
type Store struct {
	pool         *pgxpool.Pool
	transactions *TransactionRepository
	categories   *CategoryRepository
	budgets      *BudgetRepository
}

// Open connects to databaseURL, verifies the connection and applies migrations
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}

	return NewStore(pool), nil
}

// NewStore wraps an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		transactions: NewTransactionRepository(pool),
		categories:   NewCategoryRepository(pool),
		budgets:      NewBudgetRepository(pool),
	}
}

// View runs fn inside a read-only repeatable-read transaction so every query sees one snapshot
func (s *Store) View(ctx context.Context, fn func(domain.LedgerReader) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&reader{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Transactions() domain.TransactionRepository { return s.transactions }
func (s *Store) Categories() domain.CategoryRepository     { return s.categories }
func (s *Store) Budgets() domain.BudgetRepository          { return s.budgets }

// Close closes the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
