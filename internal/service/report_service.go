package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportService assembles reports. Each report is computed inside one read
// transaction so it reflects a single consistent state of the ledger.
type ReportService struct {
	store domain.LedgerStore
}

// NewReportService creates a new ReportService
func NewReportService(store domain.LedgerStore) *ReportService {
	return &ReportService{store: store}
}

// BuildReport dispatches on the report parameters and returns the complete report.
// No partial report is returned on error.
func (s *ReportService) BuildReport(ctx context.Context, params domain.ReportParams, today time.Time) (*domain.Report, error) {
	today = util.DateOf(today)

	var report *domain.Report
	err := s.store.View(ctx, func(r domain.LedgerReader) error {
		v := &ledgerView{ctx: ctx, reader: r}

		var err error
		switch p := params.(type) {
		case domain.MonthlyReportParams:
			report, err = s.monthly(v, p, today)
		case domain.YearlyReportParams:
			report, err = s.yearly(v, p, today)
		case domain.CategoryReportParams:
			report, err = s.category(v, p, today)
		case domain.BudgetStatusReportParams:
			report, err = s.budgetStatus(v, today)
		default:
			err = fmt.Errorf("%w: %T", domain.ErrInvalidReportType, params)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	report.GeneratedOn = today
	return report, nil
}

// EvaluateBudgets evaluates every budget against the calendar month or year,
// per its cadence, that contains the start of period.
func (s *ReportService) EvaluateBudgets(ctx context.Context, period domain.Period) ([]domain.BudgetEvaluation, error) {
	var evals []domain.BudgetEvaluation
	err := s.store.View(ctx, func(r domain.LedgerReader) error {
		v := &ledgerView{ctx: ctx, reader: r}
		budgets, err := r.ListBudgets(ctx)
		if err != nil {
			return err
		}
		evals, err = v.evaluate(budgets, period.Start)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evals, nil
}

// Summary condenses the current month's report into a summary card.
func (s *ReportService) Summary(ctx context.Context, today time.Time) (*domain.SummaryCard, error) {
	report, err := s.BuildReport(ctx, domain.MonthlyReportParams{}, today)
	if err != nil {
		return nil, err
	}

	card := &domain.SummaryCard{
		Period:       report.Period,
		Total:        report.Aggregate.Total,
		Count:        report.Aggregate.Count,
		TopCategory:  report.Aggregate.TopCategory,
		DailyAverage: report.Aggregate.DailyAverage,
	}
	if report.Comparison != nil {
		card.PercentChange = report.Comparison.PercentChange
	}
	for i := range report.Budgets {
		eval := report.Budgets[i]
		switch eval.Status {
		case domain.BudgetStatusOverLimit:
			card.BudgetsOverLimit++
		case domain.BudgetStatusNearLimit:
			card.BudgetsNearLimit++
		}
		if eval.Budget.IsOverall() && eval.Budget.Cadence == domain.BudgetCadenceMonthly {
			card.OverallBudget = &eval
		}
	}
	for _, tx := range report.Transactions {
		if tx.IsProjected {
			card.RecurringProjected++
		}
	}
	return card, nil
}

func (s *ReportService) monthly(v *ledgerView, p domain.MonthlyReportParams, today time.Time) (*domain.Report, error) {
	year, month := p.Year, p.Month
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", domain.ErrInvalidRange, month)
	}

	period := MonthPeriod(year, month)
	txs, agg, err := v.aggregate(period, "")
	if err != nil {
		return nil, err
	}
	cmp, err := v.compare(period, agg, "")
	if err != nil {
		return nil, err
	}
	if err := v.annotateDefaultBudgets(agg.Categories); err != nil {
		return nil, err
	}

	budgets, err := v.reader.ListBudgets(v.ctx)
	if err != nil {
		return nil, err
	}
	evals, err := v.evaluate(budgets, period.Start)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Type:         domain.ReportTypeMonthly,
		Period:       period,
		Aggregate:    agg,
		Comparison:   cmp,
		Budgets:      evals,
		Transactions: txs,
	}
	report.Insights = BuildInsights(report.Aggregate, report.Comparison, report.Budgets)
	return report, nil
}

func (s *ReportService) yearly(v *ledgerView, p domain.YearlyReportParams, today time.Time) (*domain.Report, error) {
	year := p.Year
	if year == 0 {
		year = today.Year()
	}

	period := YearPeriod(year)
	txs, agg, err := v.aggregate(period, "")
	if err != nil {
		return nil, err
	}
	cmp, err := v.compare(period, agg, "")
	if err != nil {
		return nil, err
	}

	budgets, err := v.reader.ListBudgets(v.ctx)
	if err != nil {
		return nil, err
	}
	yearly := slices.DeleteFunc(budgets, func(b *domain.Budget) bool {
		return b.Cadence != domain.BudgetCadenceYearly
	})
	evals, err := v.evaluate(yearly, period.Start)
	if err != nil {
		return nil, err
	}

	top := agg.Categories
	if len(top) > domain.YearlyTopCategories {
		top = top[:domain.YearlyTopCategories]
	}

	return &domain.Report{
		Type:          domain.ReportTypeYearly,
		Period:        period,
		Aggregate:     agg,
		Comparison:    cmp,
		Budgets:       evals,
		Months:        MonthlyBreakdown(year, txs),
		TopCategories: slices.Clone(top),
	}, nil
}

func (s *ReportService) category(v *ledgerView, p domain.CategoryReportParams, today time.Time) (*domain.Report, error) {
	key := domain.NormalizeCategoryName(p.Category)
	if key == "" {
		return nil, domain.ErrNameRequired
	}

	req := p.Period
	if req.Kind == "" {
		req = domain.LastNDays(domain.DefaultCategoryReportDays)
	}
	period, err := ResolvePeriod(req, today)
	if err != nil {
		return nil, err
	}

	txs, agg, err := v.aggregate(period, key)
	if err != nil {
		return nil, err
	}
	cmp, err := v.compare(period, agg, key)
	if err != nil {
		return nil, err
	}

	label, err := v.categoryLabel(key, txs, p.Category)
	if err != nil {
		return nil, err
	}

	budgets, err := v.reader.ListBudgets(v.ctx)
	if err != nil {
		return nil, err
	}
	scoped := slices.DeleteFunc(budgets, func(b *domain.Budget) bool {
		return b.ScopeKey() != key
	})
	evals, err := v.evaluate(scoped, period.End.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Type:         domain.ReportTypeCategory,
		Period:       period,
		Category:     label,
		Aggregate:    agg,
		Comparison:   cmp,
		Budgets:      evals,
		Transactions: mostRecent(txs, domain.CategoryReportTransactions),
	}
	if agg.Count > 0 {
		avg := agg.Total.Div(decimal.NewFromInt(int64(agg.Count)))
		report.AverageTransaction = &avg
	}
	return report, nil
}

func (s *ReportService) budgetStatus(v *ledgerView, today time.Time) (*domain.Report, error) {
	period := MonthPeriod(today.Year(), today.Month())
	_, agg, err := v.aggregate(period, "")
	if err != nil {
		return nil, err
	}

	budgets, err := v.reader.ListBudgets(v.ctx)
	if err != nil {
		return nil, err
	}
	evals, err := v.evaluate(budgets, today)
	if err != nil {
		return nil, err
	}

	return &domain.Report{
		Type:      domain.ReportTypeBudgetStatus,
		Period:    period,
		Aggregate: agg,
		Budgets:   evals,
		Insights:  BuildInsights(domain.Aggregate{}, nil, evals),
	}, nil
}

// ledgerView wraps one read snapshot and caches what several report sections share.
type ledgerView struct {
	ctx    context.Context
	reader domain.LedgerReader

	recurring       []*domain.Transaction
	recurringBefore time.Time
	categories      []*domain.Category
}

// transactions returns stored and projected transactions inside p.
func (v *ledgerView) transactions(p domain.Period, categoryKey string) ([]*domain.Transaction, error) {
	stored, err := v.reader.QueryTransactions(v.ctx, p.DateRange, categoryKey)
	if err != nil {
		return nil, err
	}

	if v.recurring == nil || p.End.After(v.recurringBefore) {
		v.recurring, err = v.reader.ListRecurringTransactions(v.ctx, p.End)
		if err != nil {
			return nil, err
		}
		if v.recurring == nil {
			v.recurring = []*domain.Transaction{}
		}
		v.recurringBefore = p.End
	}

	recurring := v.recurring
	if categoryKey != "" {
		recurring = slices.DeleteFunc(slices.Clone(recurring), func(tx *domain.Transaction) bool {
			return tx.CategoryKey() != categoryKey
		})
	}
	return WithProjections(p, stored, recurring), nil
}

func (v *ledgerView) aggregate(p domain.Period, categoryKey string) ([]*domain.Transaction, domain.Aggregate, error) {
	txs, err := v.transactions(p, categoryKey)
	if err != nil {
		return nil, domain.Aggregate{}, err
	}
	return txs, Aggregate(p, txs, categoryKey), nil
}

func (v *ledgerView) compare(p domain.Period, current domain.Aggregate, categoryKey string) (*domain.Comparison, error) {
	prev := PreviousPeriod(p)
	_, prevAgg, err := v.aggregate(prev, categoryKey)
	if err != nil {
		return nil, err
	}
	cmp := Compare(current.Total, prev, prevAgg.Total)
	if !cmp.PercentChange.Valid {
		log.Debug().
			Time("previous_start", prev.Start).
			Msg("Previous period has no spending, percent change undefined")
	}
	return cmp, nil
}

// evaluate runs every budget against the month or year containing anchor.
func (v *ledgerView) evaluate(budgets []*domain.Budget, anchor time.Time) ([]domain.BudgetEvaluation, error) {
	sortBudgets(budgets)

	aggs := make(map[domain.BudgetCadence]domain.Aggregate)
	evals := make([]domain.BudgetEvaluation, 0, len(budgets))
	for _, b := range budgets {
		period := BudgetPeriod(b.Cadence, anchor)
		agg, ok := aggs[b.Cadence]
		if !ok {
			var err error
			_, agg, err = v.aggregate(period, "")
			if err != nil {
				return nil, err
			}
			aggs[b.Cadence] = agg
		}
		evals = append(evals, EvaluateBudget(b, period, agg))
	}
	return evals, nil
}

func (v *ledgerView) listCategories() ([]*domain.Category, error) {
	if v.categories != nil {
		return v.categories, nil
	}
	categories, err := v.reader.ListCategories(v.ctx)
	if err != nil {
		return nil, err
	}
	v.categories = categories
	return categories, nil
}

// annotateDefaultBudgets fills budget usage for categories that carry a default budget.
func (v *ledgerView) annotateDefaultBudgets(totals []domain.CategoryTotal) error {
	categories, err := v.listCategories()
	if err != nil {
		return err
	}
	limits := make(map[string]decimal.Decimal)
	for _, c := range categories {
		if c.DefaultBudget != nil && c.DefaultBudget.IsPositive() {
			limits[c.Key()] = *c.DefaultBudget
		}
	}
	for i := range totals {
		limit, ok := limits[domain.NormalizeCategoryName(totals[i].Category)]
		if !ok {
			continue
		}
		used := totals[i].Amount.Mul(hundred).Div(limit)
		totals[i].BudgetLimit = &limit
		totals[i].BudgetUsedPercent = &used
	}
	return nil
}

// categoryLabel prefers the live category's name, then the most recent frozen label.
func (v *ledgerView) categoryLabel(key string, txs []*domain.Transaction, fallback string) (string, error) {
	categories, err := v.listCategories()
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if c.Key() == key {
			return c.Name, nil
		}
	}
	if len(txs) > 0 {
		return txs[len(txs)-1].Category, nil
	}
	return domain.CleanCategoryName(fallback), nil
}

// mostRecent returns up to n transactions, newest first.
func mostRecent(txs []*domain.Transaction, n int) []*domain.Transaction {
	out := slices.Clone(txs)
	slices.Reverse(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// sortBudgets orders the overall budget first, then by category name, monthly before yearly.
func sortBudgets(budgets []*domain.Budget) {
	slices.SortStableFunc(budgets, func(a, b *domain.Budget) int {
		if c := strings.Compare(a.ScopeKey(), b.ScopeKey()); c != 0 {
			return c
		}
		return strings.Compare(string(a.Cadence), string(b.Cadence))
	})
}
