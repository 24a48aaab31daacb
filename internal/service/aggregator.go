package service

import (
	"slices"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate sums the transactions dated inside p, optionally restricted to one
// category. Categories are ordered by subtotal descending then name ascending;
// the first one is the top category. An empty input yields a zero aggregate.
func Aggregate(p domain.Period, txs []*domain.Transaction, category string) domain.Aggregate {
	filterKey := domain.NormalizeCategoryName(category)

	agg := domain.Aggregate{
		Total:        decimal.Zero,
		Categories:   []domain.CategoryTotal{},
		DailyAverage: decimal.Zero,
		Days:         p.Days(),
	}

	byKey := make(map[string]int)
	for _, tx := range txs {
		if !p.Contains(tx.OccurredOn) {
			continue
		}
		key := tx.CategoryKey()
		if filterKey != "" && key != filterKey {
			continue
		}

		agg.Total = agg.Total.Add(tx.Amount)
		agg.Count++

		i, ok := byKey[key]
		if !ok {
			i = len(agg.Categories)
			byKey[key] = i
			agg.Categories = append(agg.Categories, domain.CategoryTotal{Category: tx.Category, Amount: decimal.Zero})
		}
		agg.Categories[i].Amount = agg.Categories[i].Amount.Add(tx.Amount)
		agg.Categories[i].Count++
	}

	slices.SortFunc(agg.Categories, compareCategoryTotals)

	for i := range agg.Categories {
		agg.Categories[i].Percentage = decimal.Zero
		if agg.Total.IsPositive() {
			agg.Categories[i].Percentage = agg.Categories[i].Amount.Mul(hundred).Div(agg.Total)
		}
	}
	if len(agg.Categories) > 0 {
		agg.TopCategory = agg.Categories[0].Category
	}
	if agg.Days > 0 {
		agg.DailyAverage = agg.Total.Div(decimal.NewFromInt(int64(agg.Days)))
	}

	return agg
}

func compareCategoryTotals(a, b domain.CategoryTotal) int {
	if c := b.Amount.Cmp(a.Amount); c != 0 {
		return c
	}
	return strings.Compare(domain.NormalizeCategoryName(a.Category), domain.NormalizeCategoryName(b.Category))
}

// PercentChange is 100 * (current - previous) / previous. The result is invalid
// when previous is zero, since no meaningful ratio exists.
func PercentChange(current, previous decimal.Decimal) decimal.NullDecimal {
	if previous.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(current.Sub(previous).Mul(hundred).Div(previous))
}

// Compare builds the comparison of a current total against the previous period's total.
func Compare(current decimal.Decimal, previous domain.Period, previousTotal decimal.Decimal) *domain.Comparison {
	return &domain.Comparison{
		Previous:      previous,
		PreviousTotal: previousTotal,
		Change:        current.Sub(previousTotal),
		PercentChange: PercentChange(current, previousTotal),
	}
}

// MonthlyBreakdown returns one summary per calendar month of year.
func MonthlyBreakdown(year int, txs []*domain.Transaction) []domain.MonthSummary {
	months := make([]domain.MonthSummary, 12)
	for i := range months {
		months[i] = domain.MonthSummary{Year: year, Month: time.Month(i + 1), Total: decimal.Zero}
	}
	for _, tx := range txs {
		if tx.OccurredOn.Year() != year {
			continue
		}
		m := &months[tx.OccurredOn.Month()-1]
		m.Total = m.Total.Add(tx.Amount)
		m.Count++
	}
	return months
}
