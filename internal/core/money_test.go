package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"0.01", "0.01", true},
		{"12.345", "12.35", true}, // half-up on the third decimal
		{"12.344", "12.34", true},
		{" 2.50 ", "2.5", true},
		{"0", "", false},
		{"0.00", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			want := decimal.RequireFromString(tc.out)
			if !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, want, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "1", "12.34", "999999.99"} {
		d := decimal.RequireFromString(s)
		if back := AmountFromCents(CentsFromAmount(d)); !back.Equal(d) {
			t.Fatalf("%s round-tripped to %s", d, back)
		}
	}
}

func TestAmountFieldUnmarshal(t *testing.T) {
	cases := []struct {
		in     string
		parsed bool
		out    string
	}{
		{`{"amount": 12.34}`, true, "12.34"},
		{`{"amount": "12.34"}`, true, "12.34"},
		{`{"amount": 12.345}`, true, "12.35"},
		{`{"amount": 0}`, false, ""},
		{`{"amount": 0.004}`, false, ""}, // rounds to 0.00, not positive
		{`{"amount": -5}`, false, ""},
		{`{"amount": "abc"}`, false, ""},
		{`{"amount": null}`, false, ""},
		{`{}`, false, ""},
	}
	for _, tc := range cases {
		var payload struct {
			Amount AmountField `json:"amount"`
		}
		if err := json.Unmarshal([]byte(tc.in), &payload); err != nil {
			t.Fatalf("%s: decode should not fail, got %v", tc.in, err)
		}
		d, parsed := payload.Amount.Value()
		if parsed != tc.parsed {
			t.Fatalf("%s: parsed=%v, want %v", tc.in, parsed, tc.parsed)
		}
		if parsed && !d.Equal(decimal.RequireFromString(tc.out)) {
			t.Fatalf("%s: got %s, want %s", tc.in, d, tc.out)
		}
	}
}
