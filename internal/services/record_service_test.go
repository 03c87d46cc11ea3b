package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

func newTestService(t *testing.T) *RecordService {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return NewRecordService(repo, nil)
}

func validInput() *core.RecordInput {
	return &core.RecordInput{
		Amount:      core.NewAmountField(decimal.RequireFromString("42.50")),
		Description: "Groceries",
		Category:    "food",
		Date:        "2025-03-10",
		Kind:        "expense",
	}
}

func TestAddRecordPersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.AddRecord(ctx, validInput())
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected a non-zero id")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	records, err := svc.ListRecords(ctx, core.ListFilter{})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("amount = %s, want 42.50", records[0].Amount)
	}
}

func TestAddRecordNilInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddRecord(context.Background(), nil)

	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *core.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Kind != core.ErrKindMissingBody {
		t.Errorf("unexpected fields: %+v", verr.Fields)
	}
}

func TestAddRecordInvalidInputNotPersisted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Category = "rocketry"
	in.Date = "10/03/2025"

	_, err := svc.AddRecord(ctx, in)

	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *core.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("got %d field errors, want 2: %+v", len(verr.Fields), verr.Fields)
	}

	records, err := svc.ListRecords(ctx, core.ListFilter{})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("invalid input was persisted: %+v", records)
	}
}

func TestDeleteRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.AddRecord(ctx, validInput())
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	if err := svc.DeleteRecord(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := svc.DeleteRecord(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteRecordUnknownID(t *testing.T) {
	svc := newTestService(t)

	if err := svc.DeleteRecord(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMonthlySummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	add := func(amount, category, date, kind string) {
		t.Helper()
		in := &core.RecordInput{
			Amount:      core.NewAmountField(decimal.RequireFromString(amount)),
			Description: "entry",
			Category:    category,
			Date:        date,
			Kind:        kind,
		}
		if _, err := svc.AddRecord(ctx, in); err != nil {
			t.Fatalf("AddRecord(%s %s): %v", kind, amount, err)
		}
	}

	add("1500.00", "income", "2025-03-01", "income")
	add("250.00", "bills", "2025-03-05", "expense")
	add("99.99", "food", "2025-03-20", "expense")
	add("80.00", "transport", "2025-07-12", "expense")
	add("10.00", "food", "2024-03-05", "expense")

	summaries, err := svc.MonthlySummary(ctx, 2025)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if summaries.Len() != 2 {
		t.Fatalf("got %d months, want 2", summaries.Len())
	}

	march, ok := summaries.Month(3)
	if !ok {
		t.Fatal("expected a March summary")
	}
	if !march.TotalIncome.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("March income = %s, want 1500.00", march.TotalIncome)
	}
	if !march.TotalExpenses.Equal(decimal.RequireFromString("349.99")) {
		t.Errorf("March expenses = %s, want 349.99", march.TotalExpenses)
	}
	if !march.Balance.Equal(decimal.RequireFromString("1150.01")) {
		t.Errorf("March balance = %s, want 1150.01", march.Balance)
	}

	july, ok := summaries.Month(7)
	if !ok {
		t.Fatal("expected a July summary")
	}
	if !july.Balance.Equal(decimal.RequireFromString("-80.00")) {
		t.Errorf("July balance = %s, want -80.00", july.Balance)
	}

	if _, ok := summaries.Month(1); ok {
		t.Error("January has no records and should be absent")
	}
}

func TestMonthlySummaryEmptyYear(t *testing.T) {
	svc := newTestService(t)

	summaries, err := svc.MonthlySummary(context.Background(), 2030)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if summaries.Len() != 0 {
		t.Errorf("got %d months, want 0", summaries.Len())
	}
}

func TestStoreHealthy(t *testing.T) {
	svc := newTestService(t)

	if !svc.StoreHealthy(context.Background()) {
		t.Error("expected a healthy store")
	}
}
