package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BudgetCadence string

const (
	BudgetCadenceMonthly BudgetCadence = "monthly"
	BudgetCadenceYearly  BudgetCadence = "yearly"
)

// ParseBudgetCadence accepts the cadence name in any case. An empty value means monthly.
func ParseBudgetCadence(s string) (BudgetCadence, error) {
	c := BudgetCadence(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case "":
		return BudgetCadenceMonthly, nil
	case BudgetCadenceMonthly, BudgetCadenceYearly:
		return c, nil
	}
	return "", ErrInvalidCadence
}

// DefaultAlertThreshold is the percent-used at which a budget is near its limit.
var DefaultAlertThreshold = decimal.NewFromInt(80)

// Budget is a spending cap over a calendar month or year. An empty Category
// scopes the budget to all spending.
type Budget struct {
	Category       string          `json:"category,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Cadence        BudgetCadence   `json:"cadence"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (b *Budget) IsOverall() bool {
	return strings.TrimSpace(b.Category) == ""
}

// ScopeKey is "" for the overall budget and the normalized category name otherwise.
func (b *Budget) ScopeKey() string {
	return NormalizeCategoryName(b.Category)
}

// ScopeLabel is a display name for the budget scope.
func (b *Budget) ScopeLabel() string {
	if b.IsOverall() {
		return "Overall"
	}
	return b.Category
}

// ValidThreshold reports whether t lies in (0, 100].
func ValidThreshold(t decimal.Decimal) bool {
	return t.IsPositive() && t.LessThanOrEqual(decimal.NewFromInt(100))
}

type BudgetStatus string

const (
	BudgetStatusOK        BudgetStatus = "ok"
	BudgetStatusNearLimit BudgetStatus = "near_limit"
	BudgetStatusOverLimit BudgetStatus = "over_limit"
)

type BudgetEvaluation struct {
	Budget      *Budget         `json:"budget"`
	Period      Period          `json:"period"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	Status      BudgetStatus    `json:"status"`
}

type BudgetRepository interface {
	// Upsert replaces any budget with the same scope and cadence.
	Upsert(ctx context.Context, budget *Budget) (*Budget, error)
	List(ctx context.Context) ([]*Budget, error)
	Delete(ctx context.Context, categoryKey string, cadence BudgetCadence) error
}
