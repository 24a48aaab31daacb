package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/shopspring/decimal"
)

func (a *App) runReport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: report needs a type: monthly, yearly, category, budget-status", ErrUsage)
	}
	reportType, err := domain.ParseReportType(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	fs := a.flagSet("report " + string(reportType))
	year := fs.Int("year", 0, "Year (default current)")
	month := fs.Int("month", 0, "Month 1-12 (default current)")
	category := fs.String("category", "", "Category for the category report")
	kind := fs.String("period", "", "Named window for the category report")
	start := fs.String("start", "", "First date, YYYY-MM-DD")
	end := fs.String("end", "", "Last date, YYYY-MM-DD")
	days := fs.String("days", "", "Last N days")
	asJSON := fs.Bool("json", false, "Print JSON")
	if ok, err := parse(fs, args[1:]); !ok {
		return err
	}

	var params domain.ReportParams
	switch reportType {
	case domain.ReportTypeMonthly:
		if *month < 0 || *month > 12 {
			return fmt.Errorf("%w: month must be between 1 and 12", ErrUsage)
		}
		params = domain.MonthlyReportParams{Year: *year, Month: time.Month(*month)}
	case domain.ReportTypeYearly:
		params = domain.YearlyReportParams{Year: *year}
	case domain.ReportTypeCategory:
		if *category == "" && fs.NArg() > 0 {
			*category = fs.Arg(0)
		}
		if *category == "" {
			return fmt.Errorf("%w: -category is required", ErrUsage)
		}
		req, err := service.ParsePeriodRequest(*kind, *start, *end, *days, domain.PeriodRequest{})
		if err != nil {
			return err
		}
		params = domain.CategoryReportParams{Category: *category, Period: req}
	case domain.ReportTypeBudgetStatus:
		params = domain.BudgetStatusReportParams{}
	}

	report, err := a.svcs.Reports.BuildReport(ctx, params, a.now())
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(report)
	}
	return a.printReport(report)
}

func (a *App) runSummary(ctx context.Context, args []string) error {
	fs := a.flagSet("summary")
	asJSON := fs.Bool("json", false, "Print JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	card, err := a.svcs.Reports.Summary(ctx, a.now())
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(card)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Period:\t%s\n", formatPeriod(card.Period))
	fmt.Fprintf(w, "Spent:\t%s (%d transactions)\n", card.Total.StringFixed(2), card.Count)
	fmt.Fprintf(w, "Daily average:\t%s\n", card.DailyAverage.StringFixed(2))
	fmt.Fprintf(w, "vs last month:\t%s\n", formatChange(card.PercentChange))
	if card.TopCategory != "" {
		fmt.Fprintf(w, "Top category:\t%s\n", card.TopCategory)
	}
	if b := card.OverallBudget; b != nil {
		fmt.Fprintf(w, "Overall budget:\t%s of %s (%s%%, %s)\n",
			b.Spent.StringFixed(2), b.Budget.Amount.StringFixed(2), b.PercentUsed.StringFixed(1), b.Status)
	}
	fmt.Fprintf(w, "Budgets over/near:\t%d / %d\n", card.BudgetsOverLimit, card.BudgetsNearLimit)
	if card.RecurringProjected > 0 {
		fmt.Fprintf(w, "Recurring expected:\t%d\n", card.RecurringProjected)
	}
	return w.Flush()
}

func (a *App) runPeriod(_ context.Context, args []string) error {
	fs := a.flagSet("period")
	kind := fs.String("period", "", "Named window: today, this-week, this-month, this-year")
	start := fs.String("start", "", "First date, YYYY-MM-DD")
	end := fs.String("end", "", "Last date, YYYY-MM-DD")
	days := fs.String("days", "", "Last N days")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if *kind == "" && fs.NArg() > 0 {
		*kind = fs.Arg(0)
	}

	req, err := service.ParsePeriodRequest(*kind, *start, *end, *days, domain.NamedPeriod(domain.PeriodThisMonth))
	if err != nil {
		return err
	}
	period, err := service.ResolvePeriod(req, a.now())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Window:\t%s\n", formatPeriod(period))
	fmt.Fprintf(w, "Cadence:\t%s\n", period.Cadence)
	fmt.Fprintf(w, "Days:\t%d\n", period.Days())
	fmt.Fprintf(w, "Previous:\t%s\n", formatPeriod(service.PreviousPeriod(period)))
	return w.Flush()
}

func (a *App) runExport(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	format := fs.String("format", "csv", "csv or json")
	kind := fs.String("period", "", "Named window (default all time)")
	start := fs.String("start", "", "First date, YYYY-MM-DD")
	end := fs.String("end", "", "Last date, YYYY-MM-DD")
	days := fs.String("days", "", "Last N days")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if !a.svcs.Exports.IsEnabled() {
		return fmt.Errorf("export storage is not configured")
	}

	f, err := service.ParseExportFormat(*format)
	if err != nil {
		return err
	}
	req, err := service.ParsePeriodRequest(*kind, *start, *end, *days, domain.PeriodRequest{})
	if err != nil {
		return err
	}

	result, err := a.svcs.Exports.Export(ctx, f, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Exported %d transactions to %s\n", result.Count, result.Location)
	if result.DownloadURL != "" {
		fmt.Fprintf(a.out, "Download (valid %s): %s\n", service.ExportDownloadExpiry, result.DownloadURL)
	}
	return nil
}

func (a *App) printReport(r *domain.Report) error {
	title := fmt.Sprintf("%s report", r.Type)
	if r.Category != "" {
		title += ": " + r.Category
	}
	fmt.Fprintf(a.out, "%s (%s)\n\n", title, formatPeriod(r.Period))

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%s (%d transactions)\n", r.Aggregate.Total.StringFixed(2), r.Aggregate.Count)
	fmt.Fprintf(w, "Daily average:\t%s over %d days\n", r.Aggregate.DailyAverage.StringFixed(2), r.Aggregate.Days)
	if r.AverageTransaction != nil {
		fmt.Fprintf(w, "Average transaction:\t%s\n", r.AverageTransaction.StringFixed(2))
	}
	if c := r.Comparison; c != nil {
		fmt.Fprintf(w, "Previous period:\t%s (%s)\n", c.PreviousTotal.StringFixed(2), formatPeriod(c.Previous))
		fmt.Fprintf(w, "Change:\t%s (%s)\n", c.Change.StringFixed(2), formatChange(c.PercentChange))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.Aggregate.Categories) > 0 && r.Type != domain.ReportTypeCategory {
		fmt.Fprintln(a.out, "\nBy category:")
		if err := writeCategoryTotals(a.out, r.Aggregate.Categories); err != nil {
			return err
		}
	}

	if len(r.Months) > 0 {
		fmt.Fprintln(a.out, "\nBy month:")
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, m := range r.Months {
			fmt.Fprintf(w, "%s\t%s\t%d\t\n", m.Month.String()[:3], m.Total.StringFixed(2), m.Count)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(r.TopCategories) > 0 {
		fmt.Fprintln(a.out, "\nTop categories:")
		if err := writeCategoryTotals(a.out, r.TopCategories); err != nil {
			return err
		}
	}

	if len(r.Budgets) > 0 {
		fmt.Fprintln(a.out, "\nBudgets:")
		if err := a.printBudgets(r.Budgets); err != nil {
			return err
		}
	}

	if len(r.Transactions) > 0 {
		fmt.Fprintln(a.out, "\nRecent transactions:")
		if err := a.printTransactions(r.Transactions); err != nil {
			return err
		}
	}

	if len(r.Insights) > 0 {
		fmt.Fprintln(a.out, "\nInsights:")
		for _, in := range r.Insights {
			fmt.Fprintf(a.out, "  - %s\n", in.Message)
		}
	}
	return nil
}

func writeCategoryTotals(out io.Writer, totals []domain.CategoryTotal) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ct := range totals {
		line := fmt.Sprintf("  %s\t%s\t%s%%\t%d", ct.Category, ct.Amount.StringFixed(2), ct.Percentage.StringFixed(1), ct.Count)
		if ct.BudgetLimit != nil && ct.BudgetUsedPercent != nil {
			line += fmt.Sprintf("\tof %s (%s%%)", ct.BudgetLimit.StringFixed(2), ct.BudgetUsedPercent.StringFixed(1))
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func (a *App) printBudgets(evals []domain.BudgetEvaluation) error {
	if len(evals) == 0 {
		fmt.Fprintln(a.out, "No budgets set.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCOPE\tCADENCE\tSPENT\tLIMIT\tREMAINING\tUSED\tSTATUS")
	for _, e := range evals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s%%\t%s\n",
			e.Budget.ScopeLabel(), e.Budget.Cadence,
			e.Spent.StringFixed(2), e.Budget.Amount.StringFixed(2), e.Remaining.StringFixed(2),
			e.PercentUsed.StringFixed(1), statusLabel(e.Status))
	}
	return w.Flush()
}

func statusLabel(s domain.BudgetStatus) string {
	switch s {
	case domain.BudgetStatusOverLimit:
		return "OVER"
	case domain.BudgetStatusNearLimit:
		return "near limit"
	}
	return "ok"
}

// formatPeriod prints the window with an inclusive end date.
func formatPeriod(p domain.Period) string {
	last := p.End.AddDate(0, 0, -1)
	if !last.After(p.Start) {
		return p.Start.Format(time.DateOnly)
	}
	return p.Start.Format(time.DateOnly) + " to " + last.Format(time.DateOnly)
}

func formatChange(pct decimal.NullDecimal) string {
	if !pct.Valid {
		return "n/a"
	}
	sign := ""
	if pct.Decimal.IsPositive() {
		sign = "+"
	}
	return sign + pct.Decimal.StringFixed(1) + "%"
}
