package core

import "testing"

func TestParseSignedCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-12,34", -1234, true},
		{"+3000", 300000, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 1234}).Units(); got != 12.34 {
		t.Fatalf("expected 12.34, got %v", got)
	}
	if got := (Money{Cents: -50}).Units(); got != -0.5 {
		t.Fatalf("expected -0.5, got %v", got)
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -1500}).Abs(); got.Cents != 1500 {
		t.Fatalf("expected 1500, got %d", got.Cents)
	}
	if got := (Money{Cents: 1500}).Abs(); got.Cents != 1500 {
		t.Fatalf("expected 1500, got %d", got.Cents)
	}
}
