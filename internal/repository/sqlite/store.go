package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.LedgerStore on a local SQLite file
type Store struct {
	db           *sql.DB
	transactions *TransactionRepository
	categories   *CategoryRepository
	budgets      *BudgetRepository
}

// Open migrates and opens the ledger database at dbPath, creating its directory.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// A single connection serializes writers; every read snapshot runs in its own transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("Opened ledger database")
	return NewStore(db), nil
}

// NewStore wraps an already migrated database
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		transactions: NewTransactionRepository(db),
		categories:   NewCategoryRepository(db),
		budgets:      NewBudgetRepository(db),
	}
}

// View runs fn against one read transaction
func (s *Store) View(ctx context.Context, fn func(domain.LedgerReader) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&reader{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Transactions() domain.TransactionRepository { return s.transactions }
func (s *Store) Categories() domain.CategoryRepository     { return s.categories }
func (s *Store) Budgets() domain.BudgetRepository          { return s.budgets }

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
