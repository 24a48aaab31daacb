package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/labstack/echo/v4"
)

// ExportHandler handles transaction export requests
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CreateExportRequest represents the export request body. With no window
// fields the whole ledger is exported.
type CreateExportRequest struct {
	Format string `json:"format"`
	Kind   string `json:"kind,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Days   string `json:"days,omitempty"`
}

// CreateExport handles POST /api/v1/exports
func (h *ExportHandler) CreateExport(c echo.Context) error {
	if !h.exportService.IsEnabled() {
		return NewInternalError(c, "Export storage is not configured")
	}

	var req CreateExportRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	format, err := service.ParseExportFormat(req.Format)
	if err != nil {
		return NewValidationError(c, err.Error(), []ValidationError{
			{Field: "format", Message: "Must be csv or json"},
		})
	}

	period, err := service.ParsePeriodRequest(req.Kind, req.Start, req.End, req.Days, domain.PeriodRequest{})
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	result, err := h.exportService.Export(c.Request().Context(), format, period)
	if err != nil {
		return NewServiceError(c, err, "Failed to export transactions")
	}

	return c.JSON(http.StatusCreated, result)
}
