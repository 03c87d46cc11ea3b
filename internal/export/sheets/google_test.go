package sheets

import (
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestRecordRow(t *testing.T) {
	rec := core.Record{
		ID:          7,
		Amount:      decimal.RequireFromString("12.35"),
		Description: "Groceries",
		Category:    core.CategoryFood,
		Date:        core.NewDate(2025, 3, 10),
		Kind:        core.KindExpense,
	}

	row := recordRow(rec)
	if len(row) != 5 {
		t.Fatalf("got %d cells, want 5: %v", len(row), row)
	}
	want := []any{"2025-03-10", "Groceries", "12.35", "food", "expense"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestRecordRowAmountStaysDecimal(t *testing.T) {
	// 0.1 has no exact float64; the cell must carry the decimal string.
	rec := core.Record{
		Amount:      decimal.RequireFromString("0.10"),
		Description: "bus ticket",
		Category:    core.CategoryTransport,
		Date:        core.NewDate(2025, 1, 2),
		Kind:        core.KindExpense,
	}

	row := recordRow(rec)
	amount, ok := row[2].(string)
	if !ok {
		t.Fatalf("amount cell is %T, want string", row[2])
	}
	if amount != "0.1" {
		t.Errorf("amount = %q, want %q", amount, "0.1")
	}
}
