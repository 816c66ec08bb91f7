package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spend/internal/core"
)

// record is the on-disk layout of the whole document.
type record struct {
	LastID   int64                 `json:"last_id"`
	Expenses []expenseRecord       `json:"expenses"`
	Budgets  map[string]core.Money `json:"budgets"`
}

type expenseRecord struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
	Category    *string    `json:"category,omitempty"`
}

func toRecord(e core.Expense) expenseRecord {
	return expenseRecord{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.SpentOn,
		Category:    e.Category,
	}
}

func (r expenseRecord) toExpense() core.Expense {
	return core.Expense{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		SpentOn:     r.Date,
		Category:    r.Category,
	}
}

// JSONStore persists the record as a single JSON document. Writes go
// through a temp file and rename, so a crashed write leaves the previous
// document intact rather than a half-written one.
type JSONStore struct {
	path string
}

// NewJSONStore opens (and if necessary initializes) the record at path.
// Missing parent directories are created; a missing document is seeded
// with the empty record. Initialization is idempotent.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	if err := s.ensureExists(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing document.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) ensureExists() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create record directory: %v", core.ErrIO, err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: stat record: %v", core.ErrIO, err)
	}
	empty := record{LastID: 0, Expenses: []expenseRecord{}, Budgets: map[string]core.Money{}}
	if err := s.write(empty); err != nil {
		return err
	}
	slog.Debug("Initialized empty expense record", "path", s.path)
	return nil
}

func (s *JSONStore) read() (record, error) {
	var rec record
	f, err := os.Open(s.path)
	if err != nil {
		return rec, fmt.Errorf("%w: open record: %v", core.ErrIO, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return rec, fmt.Errorf("%w: decode %s: %v", core.ErrCorruptRecord, s.path, err)
	}
	if rec.Budgets == nil {
		rec.Budgets = map[string]core.Money{}
	}
	for key, amount := range rec.Budgets {
		if err := amount.Validate(); err != nil {
			return rec, fmt.Errorf("%w: budget %s: %v", core.ErrCorruptRecord, key, err)
		}
	}
	return rec, nil
}

func (s *JSONStore) write(rec record) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create temp record: %v", core.ErrIO, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		f.Close()
		return fmt.Errorf("%w: encode record: %v", core.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp record: %v", core.ErrIO, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace record: %v", core.ErrIO, err)
	}
	return nil
}

// AllExpenses implements Store.
func (s *JSONStore) AllExpenses(_ context.Context) ([]core.Expense, error) {
	rec, err := s.read()
	if err != nil {
		return nil, err
	}
	expenses := make([]core.Expense, len(rec.Expenses))
	for i, er := range rec.Expenses {
		e := er.toExpense()
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", core.ErrCorruptRecord, er.ID, err)
		}
		expenses[i] = e
	}
	return expenses, nil
}

// ReplaceExpenses implements Store. Full read-modify-write: only the
// expenses field changes, last_id and budgets carry over.
func (s *JSONStore) ReplaceExpenses(_ context.Context, expenses []core.Expense) error {
	rec, err := s.read()
	if err != nil {
		return err
	}
	rec.Expenses = make([]expenseRecord, len(expenses))
	for i, e := range expenses {
		rec.Expenses[i] = toRecord(e)
	}
	return s.write(rec)
}

// NextID implements Store.
func (s *JSONStore) NextID(_ context.Context) (int64, error) {
	rec, err := s.read()
	if err != nil {
		return 0, err
	}
	rec.LastID++
	if err := s.write(rec); err != nil {
		return 0, err
	}
	return rec.LastID, nil
}

// Budgets implements Store.
func (s *JSONStore) Budgets(_ context.Context) (map[string]core.Money, error) {
	rec, err := s.read()
	if err != nil {
		return nil, err
	}
	return rec.Budgets, nil
}

// SetBudget implements Store.
func (s *JSONStore) SetBudget(_ context.Context, key string, amount core.Money) error {
	rec, err := s.read()
	if err != nil {
		return err
	}
	rec.Budgets[key] = amount
	return s.write(rec)
}

// Close implements Store. The JSON store holds no open resources.
func (s *JSONStore) Close() error {
	return nil
}
