package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"spend/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore provides the same whole-record semantics as the JSON store
// on a transactional backend. The id counter lives in a one-row meta
// table so it survives deletes exactly like last_id in the JSON document.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", core.ErrIO, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", core.ErrIO, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrIO, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AllExpenses implements Store.
func (s *SQLiteStore) AllExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, spent_on, category
		 FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query expenses: %v", core.ErrIO, err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e        core.Expense
			spentOn  string
			category sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount.Cents, &spentOn, &category); err != nil {
			return nil, fmt.Errorf("%w: scan expense: %v", core.ErrCorruptRecord, err)
		}
		date, err := core.ParseDate(spentOn)
		if err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", core.ErrCorruptRecord, e.ID, err)
		}
		e.SpentOn = date
		if category.Valid {
			v := category.String
			e.Category = &v
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", core.ErrCorruptRecord, e.ID, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expenses: %v", core.ErrIO, err)
	}
	return expenses, nil
}

// ReplaceExpenses implements Store. The table is rewritten in one
// transaction; position preserves insertion order across rewrites.
func (s *SQLiteStore) ReplaceExpenses(ctx context.Context, expenses []core.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin replace: %v", core.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("%w: clear expenses: %v", core.ErrIO, err)
	}
	for i, e := range expenses {
		var category any
		if e.Category != nil {
			category = *e.Category
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, position, description, amount_cents, spent_on, category)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Description, e.Amount.Cents, e.SpentOn.String(), category)
		if err != nil {
			return fmt.Errorf("%w: insert expense %d: %v", core.ErrIO, e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit replace: %v", core.ErrIO, err)
	}
	return nil
}

// NextID implements Store.
func (s *SQLiteStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE meta SET last_id = last_id + 1 WHERE id = 1 RETURNING last_id`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: next id: %v", core.ErrIO, err)
	}
	return id, nil
}

// Budgets implements Store.
func (s *SQLiteStore) Budgets(ctx context.Context) (map[string]core.Money, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month, amount_cents FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("%w: query budgets: %v", core.ErrIO, err)
	}
	defer rows.Close()

	budgets := map[string]core.Money{}
	for rows.Next() {
		var (
			month string
			cents int64
		)
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, fmt.Errorf("%w: scan budget: %v", core.ErrCorruptRecord, err)
		}
		budgets[month] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate budgets: %v", core.ErrIO, err)
	}
	return budgets, nil
}

// SetBudget implements Store. Later writes overwrite earlier ones for the
// same month key.
func (s *SQLiteStore) SetBudget(ctx context.Context, key string, amount core.Money) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (month, amount_cents) VALUES (?, ?)
		 ON CONFLICT (month) DO UPDATE SET amount_cents = excluded.amount_cents`,
		key, amount.Cents)
	if err != nil {
		return fmt.Errorf("%w: set budget %s: %v", core.ErrIO, key, err)
	}
	return nil
}
