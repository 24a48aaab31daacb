package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest is the body for creating or updating a category
type CategoryRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Color         string  `json:"color,omitempty"`
	DefaultBudget *string `json:"defaultBudget,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Color         string  `json:"color"`
	DefaultBudget *string `json:"defaultBudget,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

// DeleteCategoryResponse reports how many transactions were relabelled
type DeleteCategoryResponse struct {
	Reassigned int64 `json:"reassigned"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	input, err := bindCategoryInput(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), *input)
	if err != nil {
		return NewServiceError(c, err, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories(c.Request().Context())
	if err != nil {
		return NewServiceError(c, err, "Failed to get categories")
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, toCategoryResponse(category))
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateCategory handles PUT /api/v1/categories/:name
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	input, err := bindCategoryInput(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), c.Param("name"), *input)
	if err != nil {
		return NewServiceError(c, err, "Failed to update category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/categories/:name?reassignTo=
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	moved, err := h.categoryService.DeleteCategory(c.Request().Context(), c.Param("name"), c.QueryParam("reassignTo"))
	if err != nil {
		return NewServiceError(c, err, "Failed to delete category")
	}

	return c.JSON(http.StatusOK, DeleteCategoryResponse{Reassigned: moved})
}

func bindCategoryInput(c echo.Context) (*service.CategoryInput, error) {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return nil, errInvalidBody
	}

	input := &service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if req.DefaultBudget != nil && *req.DefaultBudget != "" {
		amount, err := service.ParseAmount(*req.DefaultBudget)
		if err != nil {
			return nil, err
		}
		input.DefaultBudget = &amount
	}
	return input, nil
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	resp := CategoryResponse{
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		CreatedAt:   category.CreatedAt.Format(time.RFC3339),
	}
	if category.DefaultBudget != nil {
		amount := category.DefaultBudget.StringFixed(2)
		resp.DefaultBudget = &amount
	}
	return resp
}
