package storage

import (
	"context"
	"sync"

	"spend/internal/core"
)

// MemoryStore keeps the record in memory. It backs tests and throwaway
// runs; nothing survives the process.
type MemoryStore struct {
	mu       sync.Mutex
	lastID   int64
	expenses []core.Expense
	budgets  map[string]core.Money
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{budgets: map[string]core.Money{}}
}

// AllExpenses implements Store.
func (s *MemoryStore) AllExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

// ReplaceExpenses implements Store.
func (s *MemoryStore) ReplaceExpenses(_ context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = make([]core.Expense, len(expenses))
	copy(s.expenses, expenses)
	return nil
}

// NextID implements Store.
func (s *MemoryStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

// Budgets implements Store.
func (s *MemoryStore) Budgets(_ context.Context) (map[string]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.Money, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out, nil
}

// SetBudget implements Store.
func (s *MemoryStore) SetBudget(_ context.Context, key string, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[key] = amount
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
