package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://fortuna.app/errors/validation"
	ErrorTypeNotFound     = "https://fortuna.app/errors/not-found"
	ErrorTypeUnauthorized = "https://fortuna.app/errors/unauthorized"
	ErrorTypeConflict     = "https://fortuna.app/errors/conflict"
	ErrorTypeInternal     = "https://fortuna.app/errors/internal"
	ErrorTypeRateLimit    = "https://fortuna.app/errors/rate-limit"
	ErrorTypeHTTP         = "about:blank"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

var errInvalidBody = errors.New("invalid request body")

var validationErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrNameRequired,
	domain.ErrNameTooLong,
	domain.ErrInvalidRange,
	domain.ErrInvalidAmount,
	domain.ErrInvalidDate,
	domain.ErrInvalidPaymentMethod,
	domain.ErrInvalidCadence,
	domain.ErrInvalidThreshold,
	domain.ErrInvalidReportType,
	domain.ErrInvalidExportFormat,
	domain.ErrInvalidColor,
}

// NewServiceError maps a service error onto a problem response. Unknown errors
// are logged and reported as internal with the given detail.
func NewServiceError(c echo.Context, err error, detail string) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrBudgetNotFound),
		errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrCategoryAlreadyExists),
		errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, err.Error())
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return NewValidationError(c, err.Error(), nil)
		}
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(detail)
	return NewInternalError(c, detail)
}

// ErrorHandler renders errors that reach Echo as problem details. Middleware
// rejections keep their reason; routing errors keep Echo's status.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	problem := ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Instance: c.Request().URL.Path,
	}

	var rejection *middleware.Rejection
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &rejection):
		problem.Status = rejection.Status()
		problem.Detail = rejection.Detail
		problem.Type, problem.Title = ErrorTypeUnauthorized, "Unauthorized"
		if rejection.Reason == middleware.ReasonRateLimited {
			problem.Type, problem.Title = ErrorTypeRateLimit, "Rate Limit Exceeded"
		}
	case errors.As(err, &httpErr):
		problem.Type = ErrorTypeHTTP
		problem.Status = httpErr.Code
		problem.Title = http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			problem.Detail = msg
		}
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled request error")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(problem.Status)
	} else {
		writeErr = c.JSON(problem.Status, problem)
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
