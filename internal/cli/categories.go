package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/shopspring/decimal"
)

func (a *App) runCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: category needs one of list, add, update, delete", ErrUsage)
	}

	switch args[0] {
	case "list":
		return a.listCategories(ctx)
	case "add":
		return a.addCategory(ctx, args[1:])
	case "update":
		return a.updateCategory(ctx, args[1:])
	case "delete":
		return a.deleteCategory(ctx, args[1:])
	}
	return fmt.Errorf("%w: unknown category action %q", ErrUsage, args[0])
}

func (a *App) listCategories(ctx context.Context) error {
	categories, err := a.svcs.Categories.GetCategories(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOLOR\tDEFAULT BUDGET\tDESCRIPTION")
	for _, c := range categories {
		budget := "-"
		if c.DefaultBudget != nil {
			budget = c.DefaultBudget.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Color, budget, c.Description)
	}
	return w.Flush()
}

type categoryFlags struct {
	fs          *flag.FlagSet
	name        *string
	newName     *string
	description *string
	color       *string
	budget      *string
}

func (a *App) categoryFlags(name string) *categoryFlags {
	fs := a.flagSet(name)
	return &categoryFlags{
		fs:          fs,
		name:        fs.String("name", "", "Category name (required)"),
		newName:     fs.String("new-name", "", "New name (update only)"),
		description: fs.String("description", "", "Description"),
		color:       fs.String("color", "", "Hex color like #1a2b3c"),
		budget:      fs.String("budget", "", "Default monthly budget"),
	}
}

func (f *categoryFlags) input() (service.CategoryInput, error) {
	in := service.CategoryInput{Name: *f.name, Description: *f.description, Color: *f.color}
	if *f.newName != "" {
		in.Name = *f.newName
	}
	if *f.budget != "" {
		amount, err := service.ParseAmount(*f.budget)
		if err != nil {
			return in, err
		}
		in.DefaultBudget = &amount
	}
	return in, nil
}

func (a *App) addCategory(ctx context.Context, args []string) error {
	f := a.categoryFlags("category add")
	if ok, err := parse(f.fs, args); !ok {
		return err
	}

	in, err := f.input()
	if err != nil {
		return err
	}
	created, err := a.svcs.Categories.CreateCategory(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added category %s\n", created.Name)
	return nil
}

// updateCategory replaces the category's fields; unset flags clear optional ones.
func (a *App) updateCategory(ctx context.Context, args []string) error {
	f := a.categoryFlags("category update")
	if ok, err := parse(f.fs, args); !ok {
		return err
	}
	if *f.name == "" {
		return fmt.Errorf("%w: -name is required", ErrUsage)
	}

	in, err := f.input()
	if err != nil {
		return err
	}
	updated, err := a.svcs.Categories.UpdateCategory(ctx, *f.name, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated category %s\n", updated.Name)
	return nil
}

func (a *App) deleteCategory(ctx context.Context, args []string) error {
	fs := a.flagSet("category delete")
	name := fs.String("name", "", "Category to delete (required)")
	reassign := fs.String("reassign-to", "", "Move its transactions to this category")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	moved, err := a.svcs.Categories.DeleteCategory(ctx, *name, *reassign)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted category %s", domain.CleanCategoryName(*name))
	if moved > 0 {
		fmt.Fprintf(a.out, " (%d transactions moved to %s)", moved, domain.CleanCategoryName(*reassign))
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) runBudget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: budget needs one of list, set, delete, status", ErrUsage)
	}

	switch args[0] {
	case "list":
		return a.listBudgets(ctx)
	case "set":
		return a.setBudget(ctx, args[1:])
	case "delete":
		return a.deleteBudget(ctx, args[1:])
	case "status":
		return a.budgetStatus(ctx, args[1:])
	}
	return fmt.Errorf("%w: unknown budget action %q", ErrUsage, args[0])
}

func (a *App) listBudgets(ctx context.Context) error {
	budgets, err := a.svcs.Budgets.GetBudgets(ctx)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Fprintln(a.out, "No budgets set.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCOPE\tCADENCE\tLIMIT\tALERT AT")
	for _, b := range budgets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\n", b.ScopeLabel(), b.Cadence, b.Amount.StringFixed(2), b.AlertThreshold)
	}
	return w.Flush()
}

func (a *App) setBudget(ctx context.Context, args []string) error {
	fs := a.flagSet("budget set")
	category := fs.String("category", "", "Category (empty for the overall budget)")
	amount := fs.String("amount", "", "Limit (required)")
	cadence := fs.String("cadence", "monthly", "monthly or yearly")
	threshold := fs.String("threshold", "", "Alert threshold percent")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	value, err := service.ParseAmount(*amount)
	if err != nil {
		return err
	}
	input := service.SetBudgetInput{Category: *category, Amount: value, Cadence: *cadence}
	if *threshold != "" {
		t, err := decimal.NewFromString(*threshold)
		if err != nil {
			return fmt.Errorf("%w: threshold %q is not a number", domain.ErrInvalidThreshold, *threshold)
		}
		input.AlertThreshold = &t
	}

	b, err := a.svcs.Budgets.SetBudget(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Set %s %s budget to %s\n", b.Cadence, b.ScopeLabel(), b.Amount.StringFixed(2))
	return nil
}

func (a *App) deleteBudget(ctx context.Context, args []string) error {
	fs := a.flagSet("budget delete")
	category := fs.String("category", "", "Category (empty for the overall budget)")
	cadence := fs.String("cadence", "monthly", "monthly or yearly")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if err := a.svcs.Budgets.DeleteBudget(ctx, *category, *cadence); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Budget deleted")
	return nil
}

func (a *App) budgetStatus(ctx context.Context, args []string) error {
	fs := a.flagSet("budget status")
	kind := fs.String("period", "", "Named window: today, this-week, this-month, this-year")
	start := fs.String("start", "", "First date, YYYY-MM-DD")
	end := fs.String("end", "", "Last date, YYYY-MM-DD")
	days := fs.String("days", "", "Last N days")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	req, err := service.ParsePeriodRequest(*kind, *start, *end, *days, domain.NamedPeriod(domain.PeriodThisMonth))
	if err != nil {
		return err
	}
	period, err := service.ResolvePeriod(req, a.now())
	if err != nil {
		return err
	}

	evals, err := a.svcs.Reports.EvaluateBudgets(ctx, period)
	if err != nil {
		return err
	}
	return a.printBudgets(evals)
}
