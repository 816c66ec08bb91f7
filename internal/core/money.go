// Package core holds the expense domain types.
//
// Money keeps amounts as integer cents so arithmetic (totals, budget
// comparisons) never goes through floating point. The persisted record and
// the CSV export carry plain decimal numbers, so Money converts at the
// serialization boundary only.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative amount of currency in cents.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. It accepts both dot (12.34) and comma (12,34)
// separators. Zero is allowed; negatives are not.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return Money{}, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, fmt.Errorf("%w: amount %q too large", ErrInvalidInput, s)
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

// FromFloat converts a decimal unit value (e.g. 20.5 dollars) to Money,
// rounding to the nearest cent. Negatives stay negative so Validate can
// reject them with the right error.
func FromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Units returns the amount in currency units for display and serialization.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// GreaterThan reports whether m is strictly larger than o.
func (m Money) GreaterThan(o Money) bool {
	return m.Cents > o.Cents
}

// Decimal renders the amount as a bare decimal number ("20", "15.5"),
// the form the CSV export uses.
func (m Money) Decimal() string {
	return strconv.FormatFloat(m.Units(), 'f', -1, 64)
}

// String renders the amount for terminal output: "$20" for whole amounts,
// "$20.50" otherwise.
func (m Money) String() string {
	if m.Cents%100 == 0 {
		return fmt.Sprintf("$%d", m.Cents/100)
	}
	return fmt.Sprintf("$%.2f", m.Units())
}

// MarshalJSON emits the amount as a plain decimal number so the persisted
// record matches the documented layout.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var v json.Number
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: amount %s", ErrInvalidInput, string(b))
	}
	f, err := v.Float64()
	if err != nil {
		return fmt.Errorf("%w: amount %s", ErrInvalidInput, string(b))
	}
	*m = FromFloat(f)
	return nil
}
