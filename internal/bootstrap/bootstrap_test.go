package bootstrap

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/config"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataDir:               dir,
		Env:                   "development",
		LogLevel:              "info",
		RateLimitPerMinute:    100,
		DefaultAlertThreshold: decimal.NewFromInt(70),
		ExportDir:             filepath.Join(dir, "exports"),
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	cfg := testConfig(t)
	cfg.Env = "production"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	SetupLogging(cfg, &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	cfg.LogLevel = "chatty"
	SetupLogging(cfg, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestOpen_SQLiteAndLocalExports(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	svcs, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer svcs.Close()

	assert.FileExists(t, cfg.SQLitePath())
	assert.True(t, svcs.Exports.IsEnabled())

	categories, err := svcs.Categories.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(domain.DefaultCategories))

	// The configured threshold applies to new budgets
	b, err := svcs.Budgets.SetBudget(ctx, service.SetBudgetInput{Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	assert.Equal(t, "70", b.AlertThreshold.String())
}

func TestOpenExportStorage_Local(t *testing.T) {
	cfg := testConfig(t)

	repo, err := OpenExportStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalExportRepository{}, repo)
	assert.DirExists(t, cfg.ExportDir)
}

func TestNewServices_ExportsDisabled(t *testing.T) {
	cfg := testConfig(t)
	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	svcs := NewServices(cfg, store, nil)
	assert.False(t, svcs.Exports.IsEnabled())
}
