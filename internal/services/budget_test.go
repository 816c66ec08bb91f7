package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spend/internal/core"
)

func TestSetMonthlyBudget(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	key, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 1500}, 3, 2024)
	if err != nil {
		t.Fatalf("SetMonthlyBudget err=%v", err)
	}
	if key != "2024-03" {
		t.Fatalf("key=%q, want 2024-03", key)
	}

	report, err := s.MonthlyBudget(ctx, 3, 2024)
	if err != nil || !report.Set {
		t.Fatalf("MonthlyBudget report=%+v err=%v", report, err)
	}
	if report.Budget.Cents != 1500 {
		t.Fatalf("budget=%d, want 1500", report.Budget.Cents)
	}

	// Later writes overwrite earlier ones for the same key.
	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 3000}, 3, 2024); err != nil {
		t.Fatalf("overwrite err=%v", err)
	}
	report, _ = s.MonthlyBudget(ctx, 3, 2024)
	if report.Budget.Cents != 3000 {
		t.Fatalf("budget=%d after overwrite, want 3000", report.Budget.Cents)
	}
}

func TestSetMonthlyBudgetDefaultsToCurrentDate(t *testing.T) {
	s := newTestService(t) // clock pinned to 2024-03-15

	key, err := s.SetMonthlyBudget(context.Background(), core.Money{Cents: 1000}, 0, 0)
	if err != nil {
		t.Fatalf("SetMonthlyBudget err=%v", err)
	}
	if key != "2024-03" {
		t.Fatalf("key=%q, want 2024-03", key)
	}

	// The report's key comes from the same clock, not the wall clock.
	report, err := s.MonthlyBudget(context.Background(), 0, 0)
	if err != nil || !report.Set || report.Budget.Cents != 1000 {
		t.Fatalf("MonthlyBudget report=%+v err=%v", report, err)
	}
	if report.MonthKey != "2024-03" {
		t.Fatalf("MonthKey=%q, want 2024-03", report.MonthKey)
	}
}

func TestSetMonthlyBudgetRejectsInvalidInput(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 10000}, 13, 2024); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("month 13 err=%v, want ErrInvalidMonth", err)
	}
	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: -100}, 3, 2024); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("negative amount err=%v, want ErrNegativeAmount", err)
	}
	if _, err := s.MonthlyBudget(ctx, 13, 2024); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("MonthlyBudget month 13 err=%v, want ErrInvalidMonth", err)
	}
}

func TestMonthlyBudgetAbsentWhenUnset(t *testing.T) {
	s := newTestService(t)
	report, err := s.MonthlyBudget(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("MonthlyBudget err=%v", err)
	}
	if report.Set {
		t.Fatal("expected no budget for unset month")
	}
	if report.MonthKey != "2024-07" {
		t.Fatalf("MonthKey=%q, want 2024-07", report.MonthKey)
	}
}

func TestMonthlyBudgetReportsSpend(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 1500}, 3, 2024); err != nil {
		t.Fatalf("SetMonthlyBudget err=%v", err)
	}
	mustAdd(t, s, AddParams{Description: "Lunch", Amount: core.Money{Cents: 2000}, SpentOn: core.NewDate(2024, 3, 5)})
	mustAdd(t, s, AddParams{Description: "Old", Amount: core.Money{Cents: 900}, SpentOn: core.NewDate(2023, 3, 5)})

	report, err := s.MonthlyBudget(ctx, 3, 2024)
	if err != nil {
		t.Fatalf("MonthlyBudget err=%v", err)
	}
	if !report.Set || report.Budget.Cents != 1500 || report.Spent.Cents != 2000 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBudgetWarningWhenSpendExceedsBudget(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 1500}, 3, 2024); err != nil {
		t.Fatalf("SetMonthlyBudget err=%v", err)
	}

	_, warning, err := s.AddExpense(ctx, AddParams{
		Description: "Lunch",
		Amount:      core.Money{Cents: 2000},
		SpentOn:     core.NewDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("AddExpense err=%v", err)
	}
	if warning == nil {
		t.Fatal("expected budget warning from add")
	}

	warning, err = s.BudgetWarningForMonth(ctx, 3, 2024)
	if err != nil {
		t.Fatalf("BudgetWarningForMonth err=%v", err)
	}
	if warning == nil {
		t.Fatal("expected budget warning")
	}
	if warning.MonthKey != "2024-03" || warning.Budget.Cents != 1500 || warning.Spent.Cents != 2000 {
		t.Fatalf("unexpected warning %+v", warning)
	}
	msg := warning.String()
	for _, part := range []string{"2024-03", "$15", "$20"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("warning %q missing %q", msg, part)
		}
	}
}

func TestBudgetWarningAbsentCases(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// No budget set for the month.
	_, warning, err := s.AddExpense(ctx, AddParams{
		Description: "Lunch",
		Amount:      core.Money{Cents: 2000},
		SpentOn:     core.NewDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("AddExpense err=%v", err)
	}
	if warning != nil {
		t.Fatalf("unexpected warning %+v", warning)
	}

	// Budget set but not exceeded; spending exactly the budget is fine.
	if _, err := s.SetMonthlyBudget(ctx, core.Money{Cents: 2000}, 3, 2024); err != nil {
		t.Fatalf("SetMonthlyBudget err=%v", err)
	}
	warning, err = s.BudgetWarningForMonth(ctx, 3, 2024)
	if err != nil {
		t.Fatalf("BudgetWarningForMonth err=%v", err)
	}
	if warning != nil {
		t.Fatalf("warning for spend == budget: %+v", warning)
	}

	// Warnings are scoped to the expense's own month.
	warning, err = s.BudgetWarningForMonth(ctx, 4, 2024)
	if err != nil || warning != nil {
		t.Fatalf("warning for other month: %+v err=%v", warning, err)
	}
}

func TestSpentForMonth(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mustAdd(t, s, AddParams{Description: "a", Amount: core.Money{Cents: 2000}, SpentOn: core.NewDate(2024, 3, 5)})
	mustAdd(t, s, AddParams{Description: "b", Amount: core.Money{Cents: 500}, SpentOn: core.NewDate(2024, 3, 28)})
	mustAdd(t, s, AddParams{Description: "c", Amount: core.Money{Cents: 900}, SpentOn: core.NewDate(2023, 3, 5)})

	spent, err := s.SpentForMonth(ctx, 3, 2024)
	if err != nil {
		t.Fatalf("SpentForMonth err=%v", err)
	}
	if spent.Cents != 2500 {
		t.Fatalf("spent=%d, want 2500", spent.Cents)
	}
}
