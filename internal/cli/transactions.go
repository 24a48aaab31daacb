package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
)

func (a *App) runAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	amount := fs.String("amount", "", "Amount, e.g. 12.50 or $1,234.50 (required)")
	category := fs.String("category", "", "Category name (required)")
	date := fs.String("date", "", "Date as YYYY-MM-DD (default today)")
	description := fs.String("description", "", "Description")
	tags := fs.String("tags", "", "Comma-separated tags")
	method := fs.String("method", "", "Payment method: cash, card, transfer, check, other")
	recurring := fs.Bool("recurring", false, "Repeat monthly on the same day")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if *amount == "" || *category == "" {
		return fmt.Errorf("%w: -amount and -category are required", ErrUsage)
	}

	value, err := service.ParseAmount(*amount)
	if err != nil {
		return err
	}

	input := service.CreateTransactionInput{
		Amount:        value,
		Category:      *category,
		Description:   *description,
		Tags:          splitList(*tags),
		PaymentMethod: *method,
		IsRecurring:   *recurring,
	}
	if *date != "" {
		d, err := service.ParseDate(*date)
		if err != nil {
			return err
		}
		input.OccurredOn = &d
	} else {
		today := a.now()
		input.OccurredOn = &today
	}

	tx, err := a.svcs.Transactions.CreateTransaction(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Recorded #%d: %s in %s on %s\n", tx.ID, tx.Amount.StringFixed(2), tx.Category, tx.OccurredOn.Format(time.DateOnly))
	return nil
}

func (a *App) runList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	start := fs.String("start", "", "First date, YYYY-MM-DD")
	end := fs.String("end", "", "Last date, YYYY-MM-DD (inclusive)")
	kind := fs.String("period", "", "Named window: today, this-week, this-month, this-year")
	days := fs.String("days", "", "Last N days")
	category := fs.String("category", "", "Only this category")
	limit := fs.Int("limit", domain.DefaultListLimit, "Maximum rows")
	offset := fs.Int("offset", 0, "Rows to skip")
	asJSON := fs.Bool("json", false, "Print JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	filters := &domain.TransactionFilters{Category: *category, Limit: *limit, Offset: *offset}

	req, err := service.ParsePeriodRequest(*kind, *start, *end, *days, domain.PeriodRequest{})
	if err != nil {
		return err
	}
	if req.Kind != "" {
		period, err := service.ResolvePeriod(req, a.now())
		if err != nil {
			return err
		}
		filters.Range = &period.DateRange
	}

	txs, err := a.svcs.Transactions.ListTransactions(ctx, filters)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(txs)
	}
	return a.printTransactions(txs)
}

func (a *App) runSearch(ctx context.Context, args []string) error {
	fs := a.flagSet("search")
	limit := fs.Int("limit", domain.DefaultSearchLimit, "Maximum rows")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	keyword := strings.Join(fs.Args(), " ")
	txs, err := a.svcs.Transactions.SearchTransactions(ctx, keyword, *limit)
	if err != nil {
		return err
	}
	return a.printTransactions(txs)
}

func (a *App) runEdit(ctx context.Context, args []string) error {
	fs := a.flagSet("edit")
	id := fs.Int64("id", 0, "Transaction ID (required)")
	amount := fs.String("amount", "", "New amount")
	category := fs.String("category", "", "New category")
	date := fs.String("date", "", "New date, YYYY-MM-DD")
	description := fs.String("description", "", "New description")
	tags := fs.String("tags", "", "New comma-separated tags")
	method := fs.String("method", "", "New payment method")
	recurring := fs.Bool("recurring", false, "Mark as recurring (use -recurring=false to clear)")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	set := visited(fs)
	var update domain.TransactionUpdate
	if set["amount"] {
		value, err := service.ParseAmount(*amount)
		if err != nil {
			return err
		}
		update.Amount = &value
	}
	if set["category"] {
		update.Category = category
	}
	if set["date"] {
		d, err := service.ParseDate(*date)
		if err != nil {
			return err
		}
		update.OccurredOn = &d
	}
	if set["description"] {
		update.Description = description
	}
	if set["tags"] {
		list := splitList(*tags)
		update.Tags = &list
	}
	if set["method"] {
		m := domain.PaymentMethod(*method)
		update.PaymentMethod = &m
	}
	if set["recurring"] {
		update.IsRecurring = recurring
	}

	tx, err := a.svcs.Transactions.UpdateTransaction(ctx, *id, update)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Updated #%d\n", tx.ID)
	return a.printTransactions([]*domain.Transaction{tx})
}

func (a *App) runDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	id := fs.Int64("id", 0, "Transaction ID (required)")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	if err := a.svcs.Transactions.DeleteTransaction(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted #%d\n", *id)
	return nil
}

func (a *App) runStats(ctx context.Context, args []string) error {
	fs := a.flagSet("stats")
	asJSON := fs.Bool("json", false, "Print JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	stats, err := a.svcs.Transactions.Stats(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(stats)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Transactions:\t%d\n", stats.Count)
	fmt.Fprintf(w, "Total spent:\t%s\n", stats.TotalAmount.StringFixed(2))
	fmt.Fprintf(w, "Categories:\t%d\n", stats.CategoryCount)
	fmt.Fprintf(w, "Budgets:\t%d\n", stats.BudgetCount)
	if stats.FirstDate != nil && stats.LastDate != nil {
		fmt.Fprintf(w, "Date span:\t%s .. %s\n", stats.FirstDate.Format(time.DateOnly), stats.LastDate.Format(time.DateOnly))
	}
	return w.Flush()
}

func (a *App) printTransactions(txs []*domain.Transaction) error {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tMETHOD\tDESCRIPTION\t")
	for _, tx := range txs {
		description := tx.Description
		if tx.IsRecurring {
			description += " (recurring)"
		}
		if tx.IsProjected {
			description += " (projected)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			tx.ID, tx.OccurredOn.Format(time.DateOnly), tx.Category, tx.Amount.StringFixed(2), tx.PaymentMethod, description)
	}
	return w.Flush()
}
