// Package bootstrap wires configuration, storage and services for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/config"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/sqlite"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger. Output goes to w, with
// human readable console output outside production.
func SetupLogging(cfg *config.Config, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// OpenStore opens Postgres when DATABASE_URL is set and the local SQLite file otherwise.
func OpenStore(ctx context.Context, cfg *config.Config) (domain.LedgerStore, error) {
	if cfg.DatabaseURL != "" {
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Connected to Postgres ledger")
		return store, nil
	}

	store, err := sqlite.Open(cfg.SQLitePath())
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.SQLitePath()).Msg("Opened SQLite ledger")
	return store, nil
}

// OpenExportStorage returns the S3 sink when a bucket is configured and the
// export directory otherwise.
func OpenExportStorage(ctx context.Context, cfg *config.Config) (storage.ExportRepository, error) {
	if cfg.S3.Bucket != "" {
		repo, err := storage.NewS3ExportRepository(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("init S3 export storage: %w", err)
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Exports go to S3")
		return repo, nil
	}

	repo, err := storage.NewLocalExportRepository(cfg.ExportDir)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Services holds the application services built on one store
type Services struct {
	Store        domain.LedgerStore
	Reports      *service.ReportService
	Transactions *service.TransactionService
	Categories   *service.CategoryService
	Budgets      *service.BudgetService
	Exports      *service.ExportService
}

// NewServices builds the services. A nil exports repository disables exports.
func NewServices(cfg *config.Config, store domain.LedgerStore, exports storage.ExportRepository) *Services {
	return &Services{
		Store:        store,
		Reports:      service.NewReportService(store),
		Transactions: service.NewTransactionService(store.Transactions(), store.Categories()),
		Categories:   service.NewCategoryService(store.Categories()),
		Budgets:      service.NewBudgetService(store.Budgets(), store.Categories()).WithDefaultThreshold(cfg.DefaultAlertThreshold),
		Exports:      service.NewExportService(store, exports),
	}
}

// Open loads everything a binary needs. The export sink is optional: a failure
// to reach it is logged and exports are disabled.
func Open(ctx context.Context, cfg *config.Config) (*Services, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exports, err := OpenExportStorage(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Export storage unavailable, exports disabled")
		return NewServices(cfg, store, nil), nil
	}
	return NewServices(cfg, store, exports), nil
}

// Close releases the store
func (s *Services) Close() {
	if err := s.Store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close ledger store")
	}
}
