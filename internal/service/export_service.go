package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ExportFormatCSV, nil
	case ExportFormatCSV, ExportFormatJSON:
		return f, nil
	}
	return "", domain.ErrInvalidExportFormat
}

// allTime covers every date a transaction can carry.
var allTime = domain.DateRange{
	Start: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC),
}

var csvHeader = []string{"Date", "Category", "Description", "Amount", "Payment Method", "Tags", "Recurring"}

// ExportResult describes a stored export
type ExportResult struct {
	ObjectPath string       `json:"objectPath"`
	Location   string       `json:"location"`
	Format     ExportFormat `json:"format"`
	Count      int          `json:"count"`
	Size       int64        `json:"size"`

	// DownloadURL is set when the storage can issue temporary links.
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// ExportDownloadExpiry bounds the lifetime of presigned export links
const ExportDownloadExpiry = 15 * time.Minute

type downloadPresigner interface {
	PresignDownload(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ExportService writes transaction exports to export storage
type ExportService struct {
	store   domain.LedgerStore
	storage storage.ExportRepository
	now     func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(store domain.LedgerStore, storage storage.ExportRepository) *ExportService {
	return &ExportService{store: store, storage: storage, now: time.Now}
}

// IsEnabled indicates whether export storage is configured
func (s *ExportService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Export encodes the stored transactions inside the requested window and uploads
// them. A zero request exports the whole ledger.
func (s *ExportService) Export(ctx context.Context, format ExportFormat, req domain.PeriodRequest) (*ExportResult, error) {
	if !s.IsEnabled() {
		return nil, fmt.Errorf("%w: export storage not configured", domain.ErrInternalError)
	}

	now := s.now()
	r := allTime
	if req.Kind != "" {
		period, err := ResolvePeriod(req, now)
		if err != nil {
			return nil, err
		}
		r = period.DateRange
	}

	var txs []*domain.Transaction
	err := s.store.View(ctx, func(reader domain.LedgerReader) error {
		var err error
		txs, err = reader.QueryTransactions(ctx, r, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	switch format {
	case ExportFormatCSV:
		err = WriteCSV(&buf, txs)
	case ExportFormatJSON:
		contentType = "application/json"
		err = WriteJSON(&buf, txs, now)
	default:
		err = domain.ErrInvalidExportFormat
	}
	if err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("exports/%s/%s.%s", now.UTC().Format("2006/01"), uuid.New().String(), format)
	size := int64(buf.Len())
	stored, err := s.storage.Upload(ctx, objectPath, &buf, contentType, size)
	if err != nil {
		log.Error().Err(err).Str("object_path", objectPath).Msg("Failed to store export")
		return nil, err
	}

	log.Info().
		Str("object_path", stored).
		Str("format", string(format)).
		Int("count", len(txs)).
		Msg("Export written")

	result := &ExportResult{
		ObjectPath: stored,
		Location:   s.storage.Location(stored),
		Format:     format,
		Count:      len(txs),
		Size:       size,
	}
	if p, ok := s.storage.(downloadPresigner); ok {
		url, err := p.PresignDownload(ctx, stored, ExportDownloadExpiry)
		if err != nil {
			log.Warn().Err(err).Str("object_path", stored).Msg("Failed to presign export download")
		} else {
			result.DownloadURL = url
		}
	}
	return result, nil
}

// WriteCSV writes transactions as CSV with a header row
func WriteCSV(w io.Writer, txs []*domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			tx.OccurredOn.Format(time.DateOnly),
			tx.Category,
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.PaymentMethod),
			strings.Join(tx.Tags, ";"),
			fmt.Sprintf("%t", tx.IsRecurring),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	ExportedAt   time.Time             `json:"exportedAt"`
	Count        int                   `json:"count"`
	Transactions []*domain.Transaction `json:"transactions"`
}

// WriteJSON writes transactions as an indented JSON document
func WriteJSON(w io.Writer, txs []*domain.Transaction, exportedAt time.Time) error {
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonExport{
		ExportedAt:   exportedAt.UTC(),
		Count:        len(txs),
		Transactions: txs,
	})
}
