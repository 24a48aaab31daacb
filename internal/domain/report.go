package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportTypeMonthly      ReportType = "monthly"
	ReportTypeYearly       ReportType = "yearly"
	ReportTypeCategory     ReportType = "category"
	ReportTypeBudgetStatus ReportType = "budget-status"
)

func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ReportTypeMonthly, ReportTypeYearly, ReportTypeCategory, ReportTypeBudgetStatus:
		return t, nil
	case "budget":
		return ReportTypeBudgetStatus, nil
	}
	return "", ErrInvalidReportType
}

// ReportParams is implemented by the per-type request payloads below.
type ReportParams interface {
	ReportType() ReportType
}

// MonthlyReportParams selects a calendar month. A zero Year means the current
// year and a zero Month the current month.
type MonthlyReportParams struct {
	Year  int
	Month time.Month
}

// YearlyReportParams selects a calendar year. A zero Year means the current year.
type YearlyReportParams struct {
	Year int
}

// CategoryReportParams scopes a report to one category. A zero Period.Kind
// means the last DefaultCategoryReportDays days.
type CategoryReportParams struct {
	Category string
	Period   PeriodRequest
}

type BudgetStatusReportParams struct{}

func (MonthlyReportParams) ReportType() ReportType      { return ReportTypeMonthly }
func (YearlyReportParams) ReportType() ReportType       { return ReportTypeYearly }
func (CategoryReportParams) ReportType() ReportType     { return ReportTypeCategory }
func (BudgetStatusReportParams) ReportType() ReportType { return ReportTypeBudgetStatus }

const (
	DefaultCategoryReportDays  = 90
	CategoryReportTransactions = 20
	YearlyTopCategories        = 5
)

type CategoryTotal struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
	// Set when the live category carries a default budget.
	BudgetLimit       *decimal.Decimal `json:"budgetLimit,omitempty"`
	BudgetUsedPercent *decimal.Decimal `json:"budgetUsedPercent,omitempty"`
}

type Aggregate struct {
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Categories   []CategoryTotal `json:"categories"`
	TopCategory  string          `json:"topCategory,omitempty"`
	DailyAverage decimal.Decimal `json:"dailyAverage"`
	Days         int             `json:"days"`
}

// Comparison holds the delta against the previous comparable period.
// PercentChange is invalid (JSON null) when the previous total is zero.
type Comparison struct {
	Previous      Period              `json:"previous"`
	PreviousTotal decimal.Decimal     `json:"previousTotal"`
	Change        decimal.Decimal     `json:"change"`
	PercentChange decimal.NullDecimal `json:"percentChange"`
}

type MonthSummary struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type InsightKind string

const (
	InsightOverBudget        InsightKind = "over_budget"
	InsightNearBudget        InsightKind = "near_budget"
	InsightSpendingUp        InsightKind = "spending_up"
	InsightSpendingDown      InsightKind = "spending_down"
	InsightCategoryDominates InsightKind = "category_dominates"
)

type Insight struct {
	Kind    InsightKind `json:"kind"`
	Message string      `json:"message"`
}

type Report struct {
	Type               ReportType         `json:"type"`
	GeneratedOn        time.Time          `json:"generatedOn"`
	Period             Period             `json:"period"`
	Category           string             `json:"category,omitempty"`
	Aggregate          Aggregate          `json:"aggregate"`
	Comparison         *Comparison        `json:"comparison,omitempty"`
	Budgets            []BudgetEvaluation `json:"budgets,omitempty"`
	Months             []MonthSummary     `json:"months,omitempty"`
	TopCategories      []CategoryTotal    `json:"topCategories,omitempty"`
	Transactions       []*Transaction     `json:"transactions,omitempty"`
	AverageTransaction *decimal.Decimal   `json:"averageTransaction,omitempty"`
	Insights           []Insight          `json:"insights,omitempty"`
}

// SummaryCard is the at-a-glance view of the current month.
type SummaryCard struct {
	Period             Period              `json:"period"`
	Total              decimal.Decimal     `json:"total"`
	Count              int                 `json:"count"`
	TopCategory        string              `json:"topCategory,omitempty"`
	DailyAverage       decimal.Decimal     `json:"dailyAverage"`
	PercentChange      decimal.NullDecimal `json:"percentChange"`
	OverallBudget      *BudgetEvaluation   `json:"overallBudget,omitempty"`
	BudgetsOverLimit   int                 `json:"budgetsOverLimit"`
	BudgetsNearLimit   int                 `json:"budgetsNearLimit"`
	RecurringProjected int                 `json:"recurringProjected"`
}
