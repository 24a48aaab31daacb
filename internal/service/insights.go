package service

import (
	"fmt"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	spendingUpPercent     = decimal.NewFromInt(20)
	spendingDownPercent   = decimal.NewFromInt(-10)
	dominantCategoryShare = decimal.NewFromInt(40)
)

// BuildInsights derives short recommendations from a report's sections. Any
// section may be empty.
func BuildInsights(agg domain.Aggregate, cmp *domain.Comparison, evals []domain.BudgetEvaluation) []domain.Insight {
	var insights []domain.Insight

	for _, eval := range evals {
		switch eval.Status {
		case domain.BudgetStatusOverLimit:
			insights = append(insights, domain.Insight{
				Kind: domain.InsightOverBudget,
				Message: fmt.Sprintf("%s %s budget exceeded: spent %s of %s",
					eval.Budget.ScopeLabel(), eval.Budget.Cadence, eval.Spent.StringFixed(2), eval.Budget.Amount.StringFixed(2)),
			})
		case domain.BudgetStatusNearLimit:
			insights = append(insights, domain.Insight{
				Kind: domain.InsightNearBudget,
				Message: fmt.Sprintf("%s %s budget is at %s%% of its limit",
					eval.Budget.ScopeLabel(), eval.Budget.Cadence, eval.PercentUsed.StringFixed(1)),
			})
		}
	}

	if cmp != nil && cmp.PercentChange.Valid {
		change := cmp.PercentChange.Decimal
		switch {
		case change.GreaterThan(spendingUpPercent):
			insights = append(insights, domain.Insight{
				Kind:    domain.InsightSpendingUp,
				Message: fmt.Sprintf("Spending is up %s%% compared to the previous period", change.StringFixed(1)),
			})
		case change.LessThan(spendingDownPercent):
			insights = append(insights, domain.Insight{
				Kind:    domain.InsightSpendingDown,
				Message: fmt.Sprintf("Spending is down %s%% compared to the previous period", change.Abs().StringFixed(1)),
			})
		}
	}

	if len(agg.Categories) > 0 && agg.Categories[0].Percentage.GreaterThan(dominantCategoryShare) {
		top := agg.Categories[0]
		insights = append(insights, domain.Insight{
			Kind:    domain.InsightCategoryDominates,
			Message: fmt.Sprintf("%s accounts for %s%% of spending", top.Category, top.Percentage.StringFixed(1)),
		})
	}

	return insights
}
