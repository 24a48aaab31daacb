package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles report, period and budget evaluation requests
type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		now:           time.Now,
	}
}

// PeriodResponse represents a resolved window. End is exclusive.
type PeriodResponse struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Cadence  string          `json:"cadence"`
	Days     int             `json:"days"`
	Previous *PeriodResponse `json:"previous,omitempty"`
}

// BudgetEvaluationsResponse wraps the evaluations for the requested window
type BudgetEvaluationsResponse struct {
	Period      PeriodResponse            `json:"period"`
	Evaluations []domain.BudgetEvaluation `json:"evaluations"`
}

// ResolvePeriod handles GET /api/v1/periods/resolve?kind=&start=&end=&days=
func (h *ReportHandler) ResolvePeriod(c echo.Context) error {
	period, err := h.periodFromQuery(c, domain.NamedPeriod(domain.PeriodThisMonth))
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	resp := toPeriodResponse(period)
	previous := toPeriodResponse(service.PreviousPeriod(period))
	resp.Previous = &previous
	return c.JSON(http.StatusOK, resp)
}

// GetMonthlyReport handles GET /api/v1/reports/monthly?year=&month=
func (h *ReportHandler) GetMonthlyReport(c echo.Context) error {
	var params domain.MonthlyReportParams

	if s := c.QueryParam("year"); s != "" {
		year, err := parseYear(s)
		if err != nil {
			return NewValidationError(c, "Invalid year", nil)
		}
		params.Year = year
	}
	if s := c.QueryParam("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			return NewValidationError(c, "Invalid month (must be 1-12)", nil)
		}
		params.Month = time.Month(month)
	}

	return h.respondReport(c, params)
}

// GetYearlyReport handles GET /api/v1/reports/yearly?year=
func (h *ReportHandler) GetYearlyReport(c echo.Context) error {
	var params domain.YearlyReportParams

	if s := c.QueryParam("year"); s != "" {
		year, err := parseYear(s)
		if err != nil {
			return NewValidationError(c, "Invalid year", nil)
		}
		params.Year = year
	}

	return h.respondReport(c, params)
}

// GetCategoryReport handles GET /api/v1/reports/category/:name?kind=&start=&end=&days=
func (h *ReportHandler) GetCategoryReport(c echo.Context) error {
	req, err := service.ParsePeriodRequest(c.QueryParam("kind"), c.QueryParam("start"), c.QueryParam("end"), c.QueryParam("days"), domain.PeriodRequest{})
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	return h.respondReport(c, domain.CategoryReportParams{
		Category: c.Param("name"),
		Period:   req,
	})
}

// GetBudgetStatusReport handles GET /api/v1/reports/budget-status
func (h *ReportHandler) GetBudgetStatusReport(c echo.Context) error {
	return h.respondReport(c, domain.BudgetStatusReportParams{})
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	card, err := h.reportService.Summary(c.Request().Context(), h.now())
	if err != nil {
		return NewServiceError(c, err, "Failed to build summary")
	}
	return c.JSON(http.StatusOK, card)
}

// EvaluateBudgets handles GET /api/v1/budgets/evaluations?kind=&start=&end=&days=
func (h *ReportHandler) EvaluateBudgets(c echo.Context) error {
	period, err := h.periodFromQuery(c, domain.NamedPeriod(domain.PeriodThisMonth))
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	evals, err := h.reportService.EvaluateBudgets(c.Request().Context(), period)
	if err != nil {
		return NewServiceError(c, err, "Failed to evaluate budgets")
	}
	if evals == nil {
		evals = []domain.BudgetEvaluation{}
	}

	return c.JSON(http.StatusOK, BudgetEvaluationsResponse{
		Period:      toPeriodResponse(period),
		Evaluations: evals,
	})
}

func (h *ReportHandler) respondReport(c echo.Context, params domain.ReportParams) error {
	report, err := h.reportService.BuildReport(c.Request().Context(), params, h.now())
	if err != nil {
		log.Debug().Err(err).Str("report_type", string(params.ReportType())).Msg("Report failed")
		return NewServiceError(c, err, "Failed to build report")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) periodFromQuery(c echo.Context, fallback domain.PeriodRequest) (domain.Period, error) {
	req, err := service.ParsePeriodRequest(c.QueryParam("kind"), c.QueryParam("start"), c.QueryParam("end"), c.QueryParam("days"), fallback)
	if err != nil {
		return domain.Period{}, err
	}
	return service.ResolvePeriod(req, h.now())
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		return 0, domain.ErrInvalidInput
	}
	return year, nil
}

func toPeriodResponse(p domain.Period) PeriodResponse {
	return PeriodResponse{
		Start:   p.Start.Format(time.DateOnly),
		End:     p.End.Format(time.DateOnly),
		Cadence: string(p.Cadence),
		Days:    p.Days(),
	}
}
