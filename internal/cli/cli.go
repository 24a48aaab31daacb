// Package cli implements the ledger command line on top of the services.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/bootstrap"
)

// ErrUsage is returned for unknown commands and bad flags
var ErrUsage = errors.New("usage error")

// App runs ledger commands against one set of services
type App struct {
	svcs *bootstrap.Services
	out  io.Writer
	now  func() time.Time
}

// New creates an App writing its output to out
func New(svcs *bootstrap.Services, out io.Writer) *App {
	return &App{svcs: svcs, out: out, now: time.Now}
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"add", "Record an expense", (*App).runAdd},
	{"list", "List transactions, newest first", (*App).runList},
	{"search", "Search transaction descriptions", (*App).runSearch},
	{"edit", "Change fields of a transaction", (*App).runEdit},
	{"delete", "Delete a transaction", (*App).runDelete},
	{"category", "Manage categories (list, add, update, delete)", (*App).runCategory},
	{"budget", "Manage budgets (list, set, delete, status)", (*App).runBudget},
	{"report", "Show a monthly, yearly, category or budget-status report", (*App).runReport},
	{"summary", "Show this month at a glance", (*App).runSummary},
	{"period", "Resolve a reporting window", (*App).runPeriod},
	{"export", "Export transactions to CSV or JSON", (*App).runExport},
	{"stats", "Show ledger statistics", (*App).runStats},
}

// Run dispatches args[0] to its command
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return ErrUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		a.printUsage()
		return nil
	}

	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(a, ctx, args[1:])
		}
	}

	fmt.Fprintf(a.out, "Unknown command: %s\n\n", args[0])
	a.printUsage()
	return ErrUsage
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, "Fortuna Ledger")
	fmt.Fprintln(a.out, "\nUsage:")
	fmt.Fprintln(a.out, "  ledger <command> [options]")
	fmt.Fprintln(a.out, "\nCommands:")
	for _, cmd := range commands {
		fmt.Fprintf(a.out, "  %-9s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(a.out, "\nRun 'ledger <command> -h' for more information on a command.")
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// parse parses flags and maps flag errors to ErrUsage. Help requests are not errors.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return true, nil
}

// visited reports which flags were set explicitly
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
