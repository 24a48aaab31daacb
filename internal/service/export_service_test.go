package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// presigningExportRepository records uploads in memory and issues fake links
type presigningExportRepository struct {
	objects   map[string][]byte
	presigned []string
	uploadErr error
}

func (r *presigningExportRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if r.uploadErr != nil {
		return "", r.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if r.objects == nil {
		r.objects = make(map[string][]byte)
	}
	r.objects[objectPath] = b
	return objectPath, nil
}

func (r *presigningExportRepository) Location(objectPath string) string {
	return "s3://exports/" + objectPath
}

func (r *presigningExportRepository) PresignDownload(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	r.presigned = append(r.presigned, objectPath)
	return "https://example.test/" + objectPath, nil
}

func seedExportStore() *testutil.MockLedgerStore {
	store := testutil.NewSeededMockLedgerStore()
	store.AddTransaction(&domain.Transaction{
		Amount: decimal.RequireFromString("12.5"), Category: "Travel", OccurredOn: date(2024, 2, 3),
		Description: "Taxi, airport", Tags: []string{"trip", "work"}, PaymentMethod: domain.PaymentMethodCard,
	})
	store.AddTransaction(&domain.Transaction{
		Amount: decimal.RequireFromString("4"), Category: "Food & Dining", OccurredOn: date(2024, 3, 1),
		IsRecurring: true,
	})
	return store
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, f)

	f, err = ParseExportFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatJSON, f)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	txs := []*domain.Transaction{{
		Amount: decimal.RequireFromString("12.5"), Category: "Travel", OccurredOn: date(2024, 2, 3),
		Description: "Taxi, airport", Tags: []string{"trip", "work"}, PaymentMethod: domain.PaymentMethodCard,
	}}
	require.NoError(t, WriteCSV(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2024-02-03", "Travel", "Taxi, airport", "12.50", "card", "trip;work", "false"}, records[1])
}

func TestExport_LocalCSV(t *testing.T) {
	dir := t.TempDir()
	repo, err := storage.NewLocalExportRepository(dir)
	require.NoError(t, err)

	svc := NewExportService(seedExportStore(), repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }

	result, err := svc.Export(context.Background(), ExportFormatCSV, domain.PeriodRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.True(t, strings.HasPrefix(result.ObjectPath, "exports/2024/03/"))
	assert.True(t, strings.HasSuffix(result.ObjectPath, ".csv"))
	assert.Empty(t, result.DownloadURL)

	data, err := os.ReadFile(result.Location)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.Contains(t, string(data), "Taxi, airport")
}

func TestExport_JSONWithPeriodAndPresign(t *testing.T) {
	repo := &presigningExportRepository{}
	svc := NewExportService(seedExportStore(), repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }

	result, err := svc.Export(context.Background(), ExportFormatJSON, domain.NamedPeriod(domain.PeriodThisMonth))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "s3://exports/"+result.ObjectPath, result.Location)
	assert.Equal(t, "https://example.test/"+result.ObjectPath, result.DownloadURL)

	var doc struct {
		Count        int                   `json:"count"`
		Transactions []*domain.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(repo.objects[result.ObjectPath], &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, "Food & Dining", doc.Transactions[0].Category)
	assert.True(t, doc.Transactions[0].IsRecurring)
}

func TestExport_Errors(t *testing.T) {
	var disabled *ExportService
	assert.False(t, disabled.IsEnabled())

	svc := NewExportService(seedExportStore(), nil)
	_, err := svc.Export(context.Background(), ExportFormatCSV, domain.PeriodRequest{})
	assert.ErrorIs(t, err, domain.ErrInternalError)

	failure := errors.New("bucket gone")
	svc = NewExportService(seedExportStore(), &presigningExportRepository{uploadErr: failure})
	_, err = svc.Export(context.Background(), ExportFormatCSV, domain.PeriodRequest{})
	assert.ErrorIs(t, err, failure)

	_, err = svc.Export(context.Background(), ExportFormatCSV, domain.LastNDays(0))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
