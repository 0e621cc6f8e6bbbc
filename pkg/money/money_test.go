package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"1.005":   "1.01",
		"1.004":   "1",
		"2.675":   "2.68",
		"-1.005":  "-1.01",
		"22.5":    "22.5",
		"0.125":   "0.13",
		"19.9949": "19.99",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("Round2(%s): expected %s got %s", in, want, got)
		}
	}
}

func TestPercentAndClamp(t *testing.T) {
	if got := Percent(decimal.NewFromInt(50), decimal.NewFromInt(10)); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected 5, got %s", got)
	}
	if got := Percent(decimal.RequireFromString("33.33"), decimal.NewFromInt(15)); Format2(got) != "5.00" {
		t.Fatalf("expected 5.00, got %s", Format2(got))
	}
	if got := NonNegative(decimal.NewFromInt(-3)); !got.IsZero() {
		t.Fatalf("expected clamp to zero, got %s", got)
	}
	if got := NonNegative(decimal.NewFromInt(3)); !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected 3, got %s", got)
	}
}

func TestFormatAndCents(t *testing.T) {
	if got := Format2(decimal.NewFromInt(45)); got != "45.00" {
		t.Fatalf("expected 45.00 got %s", got)
	}
	if got := Cents(decimal.RequireFromString("12.345")); got != 1235 {
		t.Fatalf("expected 1235 cents got %d", got)
	}
	if got := FromCents(1999); Format2(got) != "19.99" {
		t.Fatalf("expected 19.99 got %s", Format2(got))
	}
}
