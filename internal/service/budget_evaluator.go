package service

import (
	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// EvaluateBudget measures a budget against the aggregate of its period. Category
// budgets match on the transactions' frozen labels, so a budget still evaluates
// after its category has been deleted.
func EvaluateBudget(b *domain.Budget, p domain.Period, agg domain.Aggregate) domain.BudgetEvaluation {
	spent := agg.Total
	if !b.IsOverall() {
		spent = categorySpend(agg, b.ScopeKey())
	}

	percent := decimal.Zero
	if b.Amount.IsPositive() {
		percent = spent.Mul(hundred).Div(b.Amount)
	}

	return domain.BudgetEvaluation{
		Budget:      b,
		Period:      p,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		PercentUsed: percent,
		Status:      budgetStatus(percent, b.AlertThreshold),
	}
}

func categorySpend(agg domain.Aggregate, key string) decimal.Decimal {
	for _, ct := range agg.Categories {
		if domain.NormalizeCategoryName(ct.Category) == key {
			return ct.Amount
		}
	}
	return decimal.Zero
}

func budgetStatus(percent, threshold decimal.Decimal) domain.BudgetStatus {
	if !domain.ValidThreshold(threshold) {
		threshold = domain.DefaultAlertThreshold
	}
	switch {
	case percent.GreaterThanOrEqual(hundred):
		return domain.BudgetStatusOverLimit
	case percent.GreaterThanOrEqual(threshold):
		return domain.BudgetStatusNearLimit
	}
	return domain.BudgetStatusOK
}
