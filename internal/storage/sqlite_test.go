package storage

import (
	"context"
	"path/filepath"
	"testing"

	"spend/internal/core"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore err=%v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRecordSemantics(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	id1, err := s.NextID(ctx)
	if err != nil {
		t.Fatalf("NextID err=%v", err)
	}
	id2, err := s.NextID(ctx)
	if err != nil {
		t.Fatalf("NextID err=%v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Fatalf("ids %d, %d, want 1, 2", id1, id2)
	}

	food := "Food"
	in := []core.Expense{
		{ID: 1, Description: "Lunch", Amount: core.Money{Cents: 2000}, SpentOn: core.NewDate(2024, 3, 5)},
		{ID: 2, Description: "Dinner", Amount: core.Money{Cents: 1050}, SpentOn: core.NewDate(2024, 3, 6), Category: &food},
	}
	if err := s.ReplaceExpenses(ctx, in); err != nil {
		t.Fatalf("ReplaceExpenses err=%v", err)
	}

	out, err := s.AllExpenses(ctx)
	if err != nil {
		t.Fatalf("AllExpenses err=%v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("unexpected expenses %+v", out)
	}
	if out[0].Category != nil || out[1].Category == nil || *out[1].Category != "Food" {
		t.Fatalf("category mismatch %+v", out)
	}
	if out[1].SpentOn.String() != "2024-03-06" {
		t.Fatalf("date mismatch %+v", out[1])
	}

	// Replace with a shorter sequence: deletes drop exactly one row and
	// the id counter keeps going.
	if err := s.ReplaceExpenses(ctx, in[1:]); err != nil {
		t.Fatalf("ReplaceExpenses err=%v", err)
	}
	out, _ = s.AllExpenses(ctx)
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("unexpected expenses after delete %+v", out)
	}
	id3, _ := s.NextID(ctx)
	if id3 != 3 {
		t.Fatalf("id counter reset after delete: %d", id3)
	}
}

func TestSQLiteStoreBudgets(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	if err := s.SetBudget(ctx, "2024-03", core.Money{Cents: 1500}); err != nil {
		t.Fatalf("SetBudget err=%v", err)
	}
	if err := s.SetBudget(ctx, "2024-03", core.Money{Cents: 3000}); err != nil {
		t.Fatalf("SetBudget overwrite err=%v", err)
	}
	if err := s.SetBudget(ctx, "2024-04", core.Money{Cents: 500}); err != nil {
		t.Fatalf("SetBudget err=%v", err)
	}

	budgets, err := s.Budgets(ctx)
	if err != nil {
		t.Fatalf("Budgets err=%v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("got %d budgets, want 2", len(budgets))
	}
	if budgets["2024-03"].Cents != 3000 || budgets["2024-04"].Cents != 500 {
		t.Fatalf("unexpected budgets %+v", budgets)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expenses.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore err=%v", err)
	}
	ctx := context.Background()
	if _, err := s.NextID(ctx); err != nil {
		t.Fatalf("NextID err=%v", err)
	}
	s.Close()

	// Migrations are idempotent and state survives reopen.
	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}
	defer s2.Close()
	id, err := s2.NextID(ctx)
	if err != nil {
		t.Fatalf("NextID err=%v", err)
	}
	if id != 2 {
		t.Fatalf("counter reset on reopen: %d", id)
	}
}
