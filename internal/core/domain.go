package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds. Specific sentinels wrap a kind so callers can match either
// the kind (errors.Is(err, ErrInvalidInput)) or the concrete cause.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrCorruptRecord = errors.New("corrupt record")
	ErrIO            = errors.New("io error")

	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrNegativeAmount   = fmt.Errorf("%w: negative amount", ErrInvalidInput)
	ErrInvalidMonth     = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	ErrEmptyCategory    = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrInvalidInput)
)

type (
	// Date is a calendar date with day precision. It marshals as YYYY-MM-DD,
	// the format both the persisted record and the CSV export use.
	Date struct {
		time.Time
	}

	// Expense is a single recorded expense. Category is optional: a nil
	// pointer means the expense has no category.
	Expense struct {
		ID          int64
		Description string
		Amount      Money
		SpentOn     Date
		Category    *string
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int in [1,12].
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	d.Time = t
	return nil
}

// MonthKey renders a (year, month) pair as the "YYYY-MM" key budgets are
// stored under.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ValidMonth reports whether month is a calendar month number.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

func (e Expense) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("%w: non-positive id %d", ErrInvalidInput, e.ID)
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.SpentOn.Validate()
}

// CategoryName returns the trimmed category, or "" when none is set.
func (e Expense) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return strings.TrimSpace(*e.Category)
}

// InMonth reports whether the expense was spent in the given year and month.
func (e Expense) InMonth(year, month int) bool {
	return e.SpentOn.Year() == year && e.SpentOn.Month() == month
}
