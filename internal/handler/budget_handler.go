package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest represents the request body for setting a budget.
// An empty category sets the overall budget.
type SetBudgetRequest struct {
	Category       string  `json:"category,omitempty"`
	Amount         string  `json:"amount"`
	Cadence        string  `json:"cadence,omitempty"`
	AlertThreshold *string `json:"alertThreshold,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	Category       string `json:"category,omitempty"`
	Scope          string `json:"scope"`
	Amount         string `json:"amount"`
	Cadence        string `json:"cadence"`
	AlertThreshold string `json:"alertThreshold"`
	UpdatedAt      string `json:"updatedAt"`
}

// SetBudget handles PUT /api/v1/budgets
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	var req SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := service.ParseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a positive decimal number"},
		})
	}

	input := service.SetBudgetInput{
		Category: req.Category,
		Amount:   amount,
		Cadence:  req.Cadence,
	}
	if req.AlertThreshold != nil {
		threshold, err := decimal.NewFromString(*req.AlertThreshold)
		if err != nil {
			return NewValidationError(c, "Invalid alert threshold", []ValidationError{
				{Field: "alertThreshold", Message: "Must be a number greater than 0 and at most 100"},
			})
		}
		input.AlertThreshold = &threshold
	}

	budget, err := h.budgetService.SetBudget(c.Request().Context(), input)
	if err != nil {
		return NewServiceError(c, err, "Failed to set budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	budgets, err := h.budgetService.GetBudgets(c.Request().Context())
	if err != nil {
		return NewServiceError(c, err, "Failed to get budgets")
	}

	resp := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		resp = append(resp, toBudgetResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteBudget handles DELETE /api/v1/budgets/:cadence?category=
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	if err := h.budgetService.DeleteBudget(c.Request().Context(), c.QueryParam("category"), c.Param("cadence")); err != nil {
		return NewServiceError(c, err, "Failed to delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		Category:       b.Category,
		Scope:          b.ScopeLabel(),
		Amount:         b.Amount.StringFixed(2),
		Cadence:        string(b.Cadence),
		AlertThreshold: b.AlertThreshold.String(),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}
