package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/labstack/echo/v4"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Amount        string   `json:"amount"`
	Category      string   `json:"category"`
	Date          *string  `json:"date,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	IsRecurring   bool     `json:"isRecurring"`
}

// UpdateTransactionRequest represents the update transaction request body.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Amount        *string   `json:"amount,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Date          *string   `json:"date,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	IsRecurring   *bool     `json:"isRecurring,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID            int64    `json:"id"`
	Amount        string   `json:"amount"`
	Category      string   `json:"category"`
	Date          string   `json:"date"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PaymentMethod string   `json:"paymentMethod"`
	IsRecurring   bool     `json:"isRecurring"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// TransactionStatsResponse represents ledger statistics in API responses
type TransactionStatsResponse struct {
	Count         int64   `json:"count"`
	TotalAmount   string  `json:"totalAmount"`
	CategoryCount int     `json:"categoryCount"`
	BudgetCount   int     `json:"budgetCount"`
	FirstDate     *string `json:"firstDate,omitempty"`
	LastDate      *string `json:"lastDate,omitempty"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := service.ParseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a positive decimal number"},
		})
	}

	var occurredOn *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		occurredOn = &parsed
	}

	tx, err := h.transactionService.CreateTransaction(c.Request().Context(), service.CreateTransactionInput{
		Amount:        amount,
		Category:      req.Category,
		OccurredOn:    occurredOn,
		Description:   req.Description,
		Tags:          req.Tags,
		PaymentMethod: req.PaymentMethod,
		IsRecurring:   req.IsRecurring,
	})
	if err != nil {
		return NewServiceError(c, err, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetTransactions handles GET /api/v1/transactions
// Query: start, end (inclusive YYYY-MM-DD), category, limit, offset
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{
		Category: c.QueryParam("category"),
	}

	if c.QueryParam("start") != "" || c.QueryParam("end") != "" {
		req, err := service.ParsePeriodRequest("", c.QueryParam("start"), c.QueryParam("end"), "", domain.PeriodRequest{})
		if err != nil {
			return NewValidationError(c, err.Error(), nil)
		}
		period, err := service.ResolvePeriod(req, time.Now())
		if err != nil {
			return NewValidationError(c, err.Error(), nil)
		}
		filters.Range = &period.DateRange
	}

	if s := c.QueryParam("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return NewValidationError(c, "Invalid limit (must be positive integer)", nil)
		}
		filters.Limit = limit
	}

	if s := c.QueryParam("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return NewValidationError(c, "Invalid offset (must be a non-negative integer)", nil)
		}
		filters.Offset = offset
	}

	txs, err := h.transactionService.ListTransactions(c.Request().Context(), filters)
	if err != nil {
		return NewServiceError(c, err, "Failed to list transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(txs))
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := parseTransactionID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	tx, err := h.transactionService.GetTransaction(c.Request().Context(), id)
	if err != nil {
		return NewServiceError(c, err, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// SearchTransactions handles GET /api/v1/transactions/search?q=&limit=
func (h *TransactionHandler) SearchTransactions(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return NewValidationError(c, "Invalid limit (must be positive integer)", nil)
		}
		limit = n
	}

	txs, err := h.transactionService.SearchTransactions(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return NewServiceError(c, err, "Failed to search transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(txs))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := parseTransactionID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := domain.TransactionUpdate{
		Category:    req.Category,
		Description: req.Description,
		Tags:        req.Tags,
		IsRecurring: req.IsRecurring,
	}

	if req.Amount != nil {
		amount, err := service.ParseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a positive decimal number"},
			})
		}
		update.Amount = &amount
	}

	if req.Date != nil {
		parsed, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		update.OccurredOn = &parsed
	}

	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		update.PaymentMethod = &method
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request().Context(), id, update)
	if err != nil {
		return NewServiceError(c, err, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := parseTransactionID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), id); err != nil {
		return NewServiceError(c, err, "Failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetStats handles GET /api/v1/stats
func (h *TransactionHandler) GetStats(c echo.Context) error {
	stats, err := h.transactionService.Stats(c.Request().Context())
	if err != nil {
		return NewServiceError(c, err, "Failed to get stats")
	}

	resp := TransactionStatsResponse{
		Count:         stats.Count,
		TotalAmount:   stats.TotalAmount.StringFixed(2),
		CategoryCount: stats.CategoryCount,
		BudgetCount:   stats.BudgetCount,
	}
	if stats.FirstDate != nil {
		first := stats.FirstDate.Format(time.DateOnly)
		resp.FirstDate = &first
	}
	if stats.LastDate != nil {
		last := stats.LastDate.Format(time.DateOnly)
		resp.LastDate = &last
	}

	return c.JSON(http.StatusOK, resp)
}

func parseTransactionID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		Amount:        tx.Amount.StringFixed(2),
		Category:      tx.Category,
		Date:          tx.OccurredOn.Format(time.DateOnly),
		Description:   tx.Description,
		Tags:          tx.Tags,
		PaymentMethod: string(tx.PaymentMethod),
		IsRecurring:   tx.IsRecurring,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     tx.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(txs []*domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	return resp
}
