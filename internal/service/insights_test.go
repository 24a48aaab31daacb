package service

import (
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func insightKinds(insights []domain.Insight) []domain.InsightKind {
	kinds := make([]domain.InsightKind, 0, len(insights))
	for _, in := range insights {
		kinds = append(kinds, in.Kind)
	}
	return kinds
}

func TestBuildInsights_Empty(t *testing.T) {
	assert.Empty(t, BuildInsights(domain.Aggregate{}, nil, nil))
}

func TestBuildInsights_BudgetsTrendAndDominance(t *testing.T) {
	p := MonthPeriod(2024, time.March)
	agg := Aggregate(p, []*domain.Transaction{
		expense("300", "Housing", date(2024, 3, 1)),
		expense("100", "Travel", date(2024, 3, 2)),
	}, "")

	evals := []domain.BudgetEvaluation{
		EvaluateBudget(overallBudget("350"), p, agg),
		EvaluateBudget(&domain.Budget{Category: "Travel", Amount: decimal.NewFromInt(120), Cadence: domain.BudgetCadenceMonthly, AlertThreshold: domain.DefaultAlertThreshold}, p, agg),
	}
	cmp := Compare(agg.Total, PreviousPeriod(p), decimal.NewFromInt(200))

	insights := BuildInsights(agg, cmp, evals)

	assert.Equal(t, []domain.InsightKind{
		domain.InsightOverBudget,
		domain.InsightNearBudget,
		domain.InsightSpendingUp,
		domain.InsightCategoryDominates,
	}, insightKinds(insights))
	assert.Contains(t, insights[0].Message, "Overall")
	assert.Contains(t, insights[2].Message, "100.0%")
	assert.Contains(t, insights[3].Message, "Housing")
}

func TestBuildInsights_SpendingDownAndUndefinedTrend(t *testing.T) {
	down := Compare(decimal.NewFromInt(50), MonthPeriod(2024, time.January), decimal.NewFromInt(100))
	assert.Equal(t, []domain.InsightKind{domain.InsightSpendingDown}, insightKinds(BuildInsights(domain.Aggregate{}, down, nil)))

	undefined := Compare(decimal.NewFromInt(50), MonthPeriod(2024, time.January), decimal.Zero)
	assert.Empty(t, BuildInsights(domain.Aggregate{}, undefined, nil))
}
