package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1235, true}, // third decimal rounds half-up
		{"12.344", 1234, true}, // below the midpoint rounds down
		{"12.346", 1235, true},
		{"20", 2000, true},
		{"0", 0, true}, // zero amounts are allowed
		{".5", 50, true},
		{"-5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		m, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseAmount(%q) err=%v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseAmount(%q) expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ParseAmount(%q) err=%v, want ErrInvalidInput kind", tc.in, err)
			}
			continue
		}
		if m.Cents != tc.cents {
			t.Fatalf("ParseAmount(%q)=%d cents, want %d", tc.in, m.Cents, tc.cents)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid: %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{2000, "$20"},
		{2050, "$20.50"},
		{5, "$0.05"},
		{0, "$0"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("String(%d)=%q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	cases := []int64{0, 5, 2000, 2050, 123456789}
	for _, cents := range cases {
		b, err := json.Marshal(Money{Cents: cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", cents, err)
		}
		var m Money
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if m.Cents != cents {
			t.Fatalf("round trip %d -> %s -> %d", cents, b, m.Cents)
		}
	}

	// Whole amounts must serialize as bare integers, matching the
	// documented record layout.
	b, _ := json.Marshal(Money{Cents: 2000})
	if string(b) != "20" {
		t.Fatalf("expected 20, got %s", b)
	}
}
