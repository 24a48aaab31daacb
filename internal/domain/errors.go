package domain

import "errors"

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyExists         = errors.New("resource already exists")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInternalError         = errors.New("internal error")
	ErrNameRequired          = errors.New("name is required")
	ErrNameTooLong           = errors.New("name exceeds maximum length")
	ErrInvalidRange          = errors.New("invalid date range")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidDate           = errors.New("date is required")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidCadence        = errors.New("cadence must be monthly or yearly")
	ErrInvalidThreshold      = errors.New("alert threshold must be greater than 0 and at most 100")
	ErrInvalidReportType     = errors.New("invalid report type")
	ErrInvalidExportFormat   = errors.New("export format must be csv or json")
	ErrInvalidColor          = errors.New("color must be a hex value like #1a2b3c")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrBudgetNotFound        = errors.New("budget not found")
)

// Validation constants
const (
	MaxCategoryNameLength    = 100
	MaxDescriptionLength     = 500
	MaxTagLength             = 50
	MaxTransactionPageLength = 1000
)
