package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/bootstrap"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/config"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:               dir,
		Env:                   "development",
		LogLevel:              "error",
		DefaultAlertThreshold: domain.DefaultAlertThreshold,
		ExportDir:             filepath.Join(dir, "exports"),
	}

	svcs, err := bootstrap.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(svcs.Close)

	var out bytes.Buffer
	app := New(svcs, &out)
	app.now = func() time.Time { return time.Date(2024, time.March, 14, 18, 30, 0, 0, time.UTC) }
	return app, &out, cfg
}

func run(t *testing.T, app *App, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, app.Run(context.Background(), args), "ledger %s", strings.Join(args, " "))
	return out.String()
}

func TestRun_Usage(t *testing.T) {
	app, out, _ := newTestApp(t)
	ctx := context.Background()

	err := app.Run(ctx, nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	err = app.Run(ctx, []string{"frobnicate"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.NoError(t, app.Run(ctx, []string{"help"}))
	assert.NoError(t, app.Run(ctx, []string{"add", "-h"}))

	err = app.Run(ctx, []string{"add", "-bogus"})
	assert.ErrorIs(t, err, ErrUsage)

	err = app.Run(ctx, []string{"add", "-amount", "5"})
	assert.ErrorIs(t, err, ErrUsage)

	err = app.Run(ctx, []string{"report", "weekly"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRun_TransactionLifecycle(t *testing.T) {
	app, out, _ := newTestApp(t)

	got := run(t, app, out, "add", "-amount", "$1,234.50", "-category", "housing", "-date", "2024-03-01", "-description", "March rent")
	assert.Contains(t, got, "Recorded #1: 1234.50 in Housing on 2024-03-01")

	got = run(t, app, out, "add", "-amount", "12", "-category", "Food & Dining", "-tags", "lunch,work")
	assert.Contains(t, got, "on 2024-03-14")

	got = run(t, app, out, "list", "-period", "this-month")
	assert.Contains(t, got, "March rent")
	assert.Contains(t, got, "12.00")

	got = run(t, app, out, "search", "rent")
	assert.Contains(t, got, "March rent")
	assert.NotContains(t, got, "Food & Dining")

	got = run(t, app, out, "edit", "-id", "2", "-amount", "15.25", "-recurring")
	assert.Contains(t, got, "Updated #2")
	assert.Contains(t, got, "15.25")
	assert.Contains(t, got, "(recurring)")

	got = run(t, app, out, "stats")
	assert.Contains(t, got, "1249.75")

	got = run(t, app, out, "delete", "-id", "1")
	assert.Contains(t, got, "Deleted #1")

	err := app.Run(context.Background(), []string{"delete", "-id", "1"})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	got = run(t, app, out, "list", "-start", "2024-03-01", "-end", "2024-03-01")
	assert.Contains(t, got, "No transactions found.")
}

func TestRun_CategoryDeleteWithReassign(t *testing.T) {
	app, out, _ := newTestApp(t)

	run(t, app, out, "category", "add", "-name", "Pets", "-color", "#123456", "-budget", "50")
	run(t, app, out, "add", "-amount", "20", "-category", "pets", "-date", "2024-03-02")
	run(t, app, out, "add", "-amount", "30", "-category", "pets", "-date", "2024-03-03")

	got := run(t, app, out, "category", "list")
	assert.Contains(t, got, "Pets")
	assert.Contains(t, got, "50.00")

	got = run(t, app, out, "category", "delete", "-name", "pets", "-reassign-to", "personal")
	assert.Contains(t, got, "Deleted category pets (2 transactions moved to personal)")

	got = run(t, app, out, "list", "-category", "Personal")
	assert.Contains(t, got, "20.00")
	assert.Contains(t, got, "30.00")

	err := app.Run(context.Background(), []string{"category", "rename"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRun_BudgetStatus(t *testing.T) {
	app, out, _ := newTestApp(t)

	got := run(t, app, out, "budget", "set", "-category", "Food & Dining", "-amount", "100")
	assert.Contains(t, got, "Set monthly Food & Dining budget to 100.00")
	run(t, app, out, "budget", "set", "-amount", "50", "-threshold", "90")

	run(t, app, out, "add", "-amount", "85", "-category", "Food & Dining", "-date", "2024-03-05")

	got = run(t, app, out, "budget", "status")
	assert.Contains(t, got, "near limit")
	assert.Contains(t, got, "OVER")

	got = run(t, app, out, "budget", "list")
	assert.Contains(t, got, "Overall")
	assert.Contains(t, got, "90%")

	run(t, app, out, "budget", "delete")
	got = run(t, app, out, "budget", "list")
	assert.NotContains(t, got, "Overall")

	err := app.Run(context.Background(), []string{"budget", "set", "-amount", "10", "-threshold", "150"})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}

func TestRun_Reports(t *testing.T) {
	app, out, _ := newTestApp(t)

	run(t, app, out, "add", "-amount", "30", "-category", "Transportation", "-date", "2024-02-10")
	run(t, app, out, "add", "-amount", "45", "-category", "Transportation", "-date", "2024-03-10")

	got := run(t, app, out, "report", "monthly")
	assert.Contains(t, got, "monthly report (2024-03-01 to 2024-03-31)")
	assert.Contains(t, got, "45.00")
	assert.Contains(t, got, "+50.0%")

	got = run(t, app, out, "report", "monthly", "-year", "2024", "-month", "1")
	assert.Contains(t, got, "n/a")

	got = run(t, app, out, "report", "category", "-category", "transportation", "-period", "this-year")
	assert.Contains(t, got, "category report: Transportation")
	assert.Contains(t, got, "Average transaction:")

	got = run(t, app, out, "report", "yearly", "-json")
	assert.Contains(t, got, `"type": "yearly"`)

	got = run(t, app, out, "summary")
	assert.Contains(t, got, "Spent:")
	assert.Contains(t, got, "+50.0%")
}

func TestRun_Period(t *testing.T) {
	app, out, _ := newTestApp(t)

	got := run(t, app, out, "period")
	assert.Contains(t, got, "2024-03-01 to 2024-03-31")
	assert.Contains(t, got, "2024-02-01 to 2024-02-29")

	got = run(t, app, out, "period", "-days", "7")
	assert.Contains(t, got, "2024-03-08 to 2024-03-14")
	assert.Contains(t, got, "2024-03-01 to 2024-03-07")

	err := app.Run(context.Background(), []string{"period", "-start", "2024-03-10", "-end", "2024-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestRun_Export(t *testing.T) {
	app, out, cfg := newTestApp(t)

	run(t, app, out, "add", "-amount", "9.99", "-category", "Entertainment", "-date", "2024-03-02")

	got := run(t, app, out, "export", "-format", "json")
	assert.Contains(t, got, "Exported 1 transactions to ")

	entries, err := os.ReadDir(cfg.ExportDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	err = app.Run(context.Background(), []string{"export", "-format", "xml"})
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "n/a", formatChange(decimal.NullDecimal{}))
	assert.Equal(t, "+12.5%", formatChange(decimal.NewNullDecimal(decimal.RequireFromString("12.5"))))
	assert.Equal(t, "-3.0%", formatChange(decimal.NewNullDecimal(decimal.NewFromInt(-3))))
}
