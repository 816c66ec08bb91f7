// Package storage owns the durable expense record: the full list of
// expenses, the per-month budgets, and the last assigned identifier.
//
// Every implementation exposes whole-record semantics: reads decode the
// entire record, writes rewrite it. There is no locking or versioning;
// the tracker assumes a single process running one command at a time, and
// concurrent external writers may lose updates.
package storage

import (
	"context"

	"spend/internal/core"
)

// Store is the persistence boundary for the expense record. The default
// implementation is a single JSON document; the SQLite implementation
// offers the same semantics on a transactional backend.
type Store interface {
	// AllExpenses decodes every stored expense in insertion order.
	// A document that fails to parse or holds an invalid expense yields
	// core.ErrCorruptRecord.
	AllExpenses(ctx context.Context) ([]core.Expense, error)

	// ReplaceExpenses overwrites the stored expense sequence, preserving
	// the id counter and budgets.
	ReplaceExpenses(ctx context.Context, expenses []core.Expense) error

	// NextID increments and returns the record's id counter. Values are
	// strictly increasing and never recycled, even across deletes.
	NextID(ctx context.Context) (int64, error)

	// Budgets returns the month-key -> amount mapping.
	Budgets(ctx context.Context) (map[string]core.Money, error)

	// SetBudget inserts or overwrites the budget for a month key.
	SetBudget(ctx context.Context, key string, amount core.Money) error

	Close() error
}
