package core

import (
	"encoding/json"
	"testing"
)

func TestKindValid(t *testing.T) {
	if !KindExpense.Valid() || !KindIncome.Valid() {
		t.Fatalf("expected expense and income to be valid")
	}
	if Kind("transfer").Valid() {
		t.Fatalf("expected unknown kind to be invalid")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q should be valid", c)
		}
	}
	if Category("groceries").Valid() {
		t.Fatalf("expected unknown category to be invalid")
	}
	if len(Categories()) != 9 {
		t.Fatalf("expected 9 categories, got %d", len(Categories()))
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-03-15", true},
		{"2025-12-31", true},
		{"2025-13-01", false},
		{"15-03-2025", false},
		{"2025-3-1", false},
		{"not-a-date", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if tc.ok && d.String() != tc.in {
			t.Fatalf("%q round-tripped to %q", tc.in, d.String())
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 3, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-15"` {
		t.Fatalf("unexpected marshal output %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	rec := Record{
		ID:          7,
		Amount:      AmountFromCents(1234),
		Description: "bus ticket",
		Category:    CategoryTransport,
		Date:        NewDate(2025, 3, 15),
		Kind:        KindExpense,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "amount", "description", "category", "date", "type", "created_at"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing json key %q in %s", key, b)
		}
	}
}
