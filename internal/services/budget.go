package services

import (
	"context"
	"fmt"
	"log/slog"

	"spend/internal/core"
	"spend/internal/log"
)

// BudgetWarning is emitted when cumulative spend for a month exceeds the
// budget set for it.
type BudgetWarning struct {
	MonthKey string
	Budget   core.Money
	Spent    core.Money
}

func (w *BudgetWarning) String() string {
	return fmt.Sprintf("spent %s in %s, over the %s budget", w.Spent, w.MonthKey, w.Budget)
}

// SetMonthlyBudget stores the budget for a month and returns its month
// key. Month and year default to the current date when zero.
func (s *ExpenseService) SetMonthlyBudget(ctx context.Context, amount core.Money, month, year int) (string, error) {
	if err := amount.Validate(); err != nil {
		return "", err
	}
	month, year = s.defaultMonthYear(month, year)
	if !core.ValidMonth(month) {
		return "", core.ErrInvalidMonth
	}

	key := core.MonthKey(year, month)
	if err := s.store.SetBudget(ctx, key, amount); err != nil {
		return "", err
	}
	slog.DebugContext(ctx, "Budget set",
		log.FieldMonthKey, key,
		log.FieldAmountCents, amount.Cents)
	return key, nil
}

// BudgetReport describes a month's budget against its cumulative spend.
// Set is false when no budget is stored for the month; Spent is only
// computed when one is.
type BudgetReport struct {
	MonthKey string
	Budget   core.Money
	Spent    core.Money
	Set      bool
}

// MonthlyBudget resolves the month key with the service clock and
// reports the stored budget alongside the month's spend. Month and year
// default to the current date.
func (s *ExpenseService) MonthlyBudget(ctx context.Context, month, year int) (BudgetReport, error) {
	month, year = s.defaultMonthYear(month, year)
	if !core.ValidMonth(month) {
		return BudgetReport{}, core.ErrInvalidMonth
	}

	report := BudgetReport{MonthKey: core.MonthKey(year, month)}
	budgets, err := s.store.Budgets(ctx)
	if err != nil {
		return BudgetReport{}, err
	}
	amount, ok := budgets[report.MonthKey]
	if !ok {
		return report, nil
	}
	report.Budget = amount
	report.Set = true

	spent, err := s.SpentForMonth(ctx, month, year)
	if err != nil {
		return BudgetReport{}, err
	}
	report.Spent = spent
	return report, nil
}

// BudgetWarningForMonth evaluates the month's spend against its budget.
// It returns nil when no budget is set or the budget is not exceeded.
func (s *ExpenseService) BudgetWarningForMonth(ctx context.Context, month, year int) (*BudgetWarning, error) {
	budgets, err := s.store.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	key := core.MonthKey(year, month)
	budget, ok := budgets[key]
	if !ok {
		return nil, nil
	}

	spent, err := s.SpentForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}
	if !spent.GreaterThan(budget) {
		return nil, nil
	}
	return &BudgetWarning{MonthKey: key, Budget: budget, Spent: spent}, nil
}

func (s *ExpenseService) defaultMonthYear(month, year int) (int, int) {
	now := s.now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}
