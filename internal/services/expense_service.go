// Package services implements the expense domain operations on top of the
// storage layer's whole-record view.
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"spend/internal/core"
	"spend/internal/log"
	"spend/internal/storage"
)

// ExpenseService enforces the domain invariants and implements every
// query and mutation the front end consumes. Each call maps to one to
// three full-record round trips against the store.
type ExpenseService struct {
	store storage.Store
	now   func() time.Time
}

func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{
		store: store,
		now:   time.Now,
	}
}

// AddParams carries the caller-supplied fields for a new expense.
// A zero SpentOn means "today".
type AddParams struct {
	Description string
	Amount      core.Money
	Category    *string
	SpentOn     core.Date
}

// UpdateParams is a field mask: nil fields are left untouched.
type UpdateParams struct {
	Description *string
	Amount      *core.Money
	Category    *string
}

// IsEmpty reports whether no field is set. The service accepts a no-op
// update; rejecting it is the front end's job.
func (p UpdateParams) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Category == nil
}

// AddExpense records a new expense with a fresh id and returns it along
// with the budget warning for its month, if any. Invalid input is
// rejected before the id counter moves, so a failed add leaves the
// record untouched.
func (s *ExpenseService) AddExpense(ctx context.Context, p AddParams) (core.Expense, *BudgetWarning, error) {
	if strings.TrimSpace(p.Description) == "" {
		return core.Expense{}, nil, core.ErrEmptyDescription
	}
	if err := p.Amount.Validate(); err != nil {
		return core.Expense{}, nil, err
	}

	spentOn := p.SpentOn
	if spentOn.IsZero() {
		spentOn = s.today()
	}

	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return core.Expense{}, nil, err
	}

	id, err := s.store.NextID(ctx)
	if err != nil {
		return core.Expense{}, nil, err
	}

	expense := core.Expense{
		ID:          id,
		Description: p.Description,
		Amount:      p.Amount,
		SpentOn:     spentOn,
		Category:    p.Category,
	}

	expenses = append(expenses, expense)
	if err := s.store.ReplaceExpenses(ctx, expenses); err != nil {
		return core.Expense{}, nil, err
	}

	slog.DebugContext(ctx, "Expense added",
		log.FieldExpenseID, expense.ID,
		log.FieldAmountCents, expense.Amount.Cents,
		log.FieldDate, expense.SpentOn.String())

	warning, err := s.BudgetWarningForMonth(ctx, expense.SpentOn.Month(), expense.SpentOn.Year())
	if err != nil {
		return core.Expense{}, nil, err
	}
	return expense, warning, nil
}

// UpdateExpense overwrites the set fields of the expense with the given
// id and returns the updated expense plus the budget warning for its
// month.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, p UpdateParams) (core.Expense, *BudgetWarning, error) {
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return core.Expense{}, nil, err
		}
	}
	// Blanking the description would break the record invariant.
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return core.Expense{}, nil, core.ErrEmptyDescription
	}

	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return core.Expense{}, nil, err
	}

	// Ids are unique, so the first match is the only one.
	for i := range expenses {
		if expenses[i].ID != id {
			continue
		}
		if p.Description != nil {
			expenses[i].Description = *p.Description
		}
		if p.Amount != nil {
			expenses[i].Amount = *p.Amount
		}
		if p.Category != nil {
			expenses[i].Category = p.Category
		}
		if err := s.store.ReplaceExpenses(ctx, expenses); err != nil {
			return core.Expense{}, nil, err
		}

		updated := expenses[i]
		slog.DebugContext(ctx, "Expense updated", log.FieldExpenseID, id)

		warning, err := s.BudgetWarningForMonth(ctx, updated.SpentOn.Month(), updated.SpentOn.Year())
		if err != nil {
			return core.Expense{}, nil, err
		}
		return updated, warning, nil
	}

	return core.Expense{}, nil, fmt.Errorf("%w: expense with id %d", core.ErrNotFound, id)
}

// DeleteExpense removes the expense with the given id. The remaining
// sequence keeps its order and the id is never reused.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return err
	}

	remaining := expenses[:0:0]
	for _, e := range expenses {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == len(expenses) {
		return fmt.Errorf("%w: expense with id %d", core.ErrNotFound, id)
	}

	if err := s.store.ReplaceExpenses(ctx, remaining); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Expense deleted", log.FieldExpenseID, id)
	return nil
}

// ListExpenses returns the full stored sequence in storage order.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.AllExpenses(ctx)
}

// TotalExpenses sums every stored expense.
func (s *ExpenseService) TotalExpenses(ctx context.Context) (core.Money, error) {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}

// TotalForMonth sums expenses spent in the given month. A year of zero
// defaults to the current year.
func (s *ExpenseService) TotalForMonth(ctx context.Context, month, year int) (core.Money, error) {
	if !core.ValidMonth(month) {
		return core.Money{}, core.ErrInvalidMonth
	}
	if year == 0 {
		year = s.now().Year()
	}
	return s.SpentForMonth(ctx, month, year)
}

// SpentForMonth sums expenses whose date falls in the given year and
// month. Trusted internal helper: no range validation.
func (s *ExpenseService) SpentForMonth(ctx context.Context, month, year int) (core.Money, error) {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, e := range expenses {
		if e.InMonth(year, month) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// Categories returns the distinct non-blank category labels across all
// expenses, trimmed, case-sensitive, sorted for stable output.
func (s *ExpenseService) Categories(ctx context.Context) ([]string, error) {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, e := range expenses {
		if name := e.CategoryName(); name != "" {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// ExpensesByCategory returns the expenses whose trimmed category exactly
// equals the trimmed input, in storage order.
func (s *ExpenseService) ExpensesByCategory(ctx context.Context, category string) ([]core.Expense, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, core.ErrEmptyCategory
	}
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Expense
	for _, e := range expenses {
		if e.CategoryName() == category {
			out = append(out, e)
		}
	}
	return out, nil
}

// ExportCSV writes the full expense sequence to path as CSV and returns
// the written location. Missing parent directories are created.
func (s *ExpenseService) ExportCSV(ctx context.Context, path string) (string, error) {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: create export directory: %v", core.ErrIO, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create export file: %v", core.ErrIO, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "date", "description", "amount", "category"}); err != nil {
		return "", fmt.Errorf("%w: write csv header: %v", core.ErrIO, err)
	}
	for _, e := range expenses {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.SpentOn.String(),
			e.Description,
			e.Amount.Decimal(),
			e.CategoryName(),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("%w: write csv row: %v", core.ErrIO, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: flush csv: %v", core.ErrIO, err)
	}

	slog.DebugContext(ctx, "Expenses exported",
		log.FieldPath, path,
		log.FieldCount, len(expenses))
	return path, nil
}

// Close releases the underlying store.
func (s *ExpenseService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *ExpenseService) today() core.Date {
	now := s.now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}
