package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"spend/internal/core"
	"spend/internal/services"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// setFlags returns the names of the flags the caller actually provided.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (a *App) cmdAdd(args []string) error {
	fs := newFlagSet("add", a.stderr)
	description := fs.String("description", "", "expense description")
	amountStr := fs.String("amount", "", "expense amount (non-negative)")
	category := fs.String("category", "", "expense category (optional)")
	dateStr := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := core.ParseAmount(*amountStr)
	if err != nil {
		return err
	}

	params := services.AddParams{
		Description: *description,
		Amount:      amount,
	}
	if setFlags(fs)["category"] {
		params.Category = category
	}
	if *dateStr != "" {
		date, err := core.ParseDate(*dateStr)
		if err != nil {
			return err
		}
		params.SpentOn = date
	}

	expense, warning, err := a.service.AddExpense(context.Background(), params)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Expense added successfully (ID: %d)\n", expense.ID)
	a.printWarning(warning)
	return nil
}

func (a *App) cmdList(args []string) error {
	fs := newFlagSet("list", a.stderr)
	category := fs.String("category", "", "only expenses in this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	var (
		expenses []core.Expense
		err      error
	)
	if setFlags(fs)["category"] {
		expenses, err = a.service.ExpensesByCategory(ctx, *category)
	} else {
		expenses, err = a.service.ListExpenses(ctx)
	}
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		fmt.Fprintln(a.stdout, "No expenses found.")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDate\tDescription\tAmount\tCategory")
	for _, e := range expenses {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.SpentOn, e.Description, e.Amount, e.CategoryName())
	}
	return w.Flush()
}

func (a *App) cmdUpdate(args []string) error {
	fs := newFlagSet("update", a.stderr)
	id := fs.Int64("id", 0, "expense id")
	description := fs.String("description", "", "new description")
	amountStr := fs.String("amount", "", "new amount (non-negative)")
	category := fs.String("category", "", "new category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := setFlags(fs)
	var params services.UpdateParams
	if set["description"] {
		params.Description = description
	}
	if set["amount"] {
		amount, err := core.ParseAmount(*amountStr)
		if err != nil {
			return err
		}
		params.Amount = &amount
	}
	if set["category"] {
		params.Category = category
	}
	if params.IsEmpty() {
		return fmt.Errorf("%w: nothing to update, provide --description and/or --amount and/or --category", core.ErrInvalidInput)
	}

	_, warning, err := a.service.UpdateExpense(context.Background(), *id, params)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Expense updated successfully")
	a.printWarning(warning)
	return nil
}

func (a *App) cmdDelete(args []string) error {
	fs := newFlagSet("delete", a.stderr)
	id := fs.Int64("id", 0, "expense id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.service.DeleteExpense(context.Background(), *id); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Expense deleted successfully")
	return nil
}

func (a *App) cmdSummary(args []string) error {
	fs := newFlagSet("summary", a.stderr)
	month := fs.Int("month", 0, "month (1-12)")
	year := fs.Int("year", 0, "year (default current)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	if !setFlags(fs)["month"] {
		total, err := a.service.TotalExpenses(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Total expenses: %s\n", total)
		return nil
	}

	total, err := a.service.TotalForMonth(ctx, *month, *year)
	if err != nil {
		return err
	}
	label := time.Month(*month).String()
	if setFlags(fs)["year"] {
		label = fmt.Sprintf("%s %d", label, *year)
	}
	fmt.Fprintf(a.stdout, "Total expenses for %s: %s\n", label, total)
	return nil
}

func (a *App) cmdCategories(args []string) error {
	fs := newFlagSet("categories", a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	categories, err := a.service.Categories(context.Background())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Fprintln(a.stdout, "No categories found.")
		return nil
	}
	for _, c := range categories {
		fmt.Fprintln(a.stdout, c)
	}
	return nil
}

func (a *App) cmdExport(args []string) error {
	fs := newFlagSet("export", a.stderr)
	out := fs.String("out", "expenses.csv", "output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := a.service.ExportCSV(context.Background(), *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expenses exported to %s\n", path)
	return nil
}

func (a *App) cmdBudget(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: budget requires a subcommand (set|show)", core.ErrInvalidInput)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "set":
		return a.cmdBudgetSet(rest)
	case "show":
		return a.cmdBudgetShow(rest)
	default:
		return fmt.Errorf("%w: unknown budget subcommand %q", core.ErrInvalidInput, sub)
	}
}

func (a *App) cmdBudgetSet(args []string) error {
	fs := newFlagSet("budget set", a.stderr)
	amountStr := fs.String("amount", "", "budget amount (non-negative)")
	month := fs.Int("month", 0, "month (1-12, default current)")
	year := fs.Int("year", 0, "year (default current)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := core.ParseAmount(*amountStr)
	if err != nil {
		return err
	}

	key, err := a.service.SetMonthlyBudget(context.Background(), amount, *month, *year)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Budget for %s set to %s\n", key, amount)
	return nil
}

func (a *App) cmdBudgetShow(args []string) error {
	fs := newFlagSet("budget show", a.stderr)
	month := fs.Int("month", 0, "month (1-12, default current)")
	year := fs.Int("year", 0, "year (default current)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := a.service.MonthlyBudget(context.Background(), *month, *year)
	if err != nil {
		return err
	}
	if !report.Set {
		fmt.Fprintf(a.stdout, "No budget set for %s\n", report.MonthKey)
		return nil
	}
	fmt.Fprintf(a.stdout, "Budget for %s: %s (spent %s)\n", report.MonthKey, report.Budget, report.Spent)
	return nil
}

func (a *App) printWarning(warning *services.BudgetWarning) {
	if warning != nil {
		fmt.Fprintf(a.stdout, "Warning: %s\n", warning)
	}
}
