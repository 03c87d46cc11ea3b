package core

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySummary is the derived income/expense picture of one month.
// All monetary values are rounded to two decimals; rounding is half-up
// (half away from zero), the same policy ParseAmount applies on input.
type MonthlySummary struct {
	Income             map[Category]decimal.Decimal `json:"income"`
	ExpensesByCategory map[Category]decimal.Decimal `json:"expenses_by_category"`
	TotalIncome        decimal.Decimal              `json:"total_income"`
	TotalExpenses      decimal.Decimal              `json:"total_expenses"`
	Balance            decimal.Decimal              `json:"balance"`
}

// MonthlySummaries maps months to their summaries. Months with no
// activity are absent. JSON marshaling emits month-name keys in
// calendar order (January first), which a plain Go map cannot do.
type MonthlySummaries struct {
	months map[time.Month]*MonthlySummary
}

// Month returns the summary for m, if any activity was recorded.
func (s MonthlySummaries) Month(m time.Month) (*MonthlySummary, bool) {
	sum, ok := s.months[m]
	return sum, ok
}

// Len returns the number of months with activity.
func (s MonthlySummaries) Len() int {
	return len(s.months)
}

func (s MonthlySummaries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for m := time.January; m <= time.December; m++ {
		sum, ok := s.months[m]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(m.String())
		buf.Write(key)
		buf.WriteByte(':')
		body, err := json.Marshal(sum)
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildMonthlySummaries folds the per-(month, category) sums of both
// kinds into per-month summaries. Buckets are created lazily, so months
// without rows never appear. Balance is total income minus total
// expenses; every monetary field is rounded to two decimals.
func BuildMonthlySummaries(income, expenses []MonthCategorySum) MonthlySummaries {
	out := MonthlySummaries{months: make(map[time.Month]*MonthlySummary)}

	bucket := func(month int) *MonthlySummary {
		m := time.Month(month)
		sum, ok := out.months[m]
		if !ok {
			sum = &MonthlySummary{
				Income:             make(map[Category]decimal.Decimal),
				ExpensesByCategory: make(map[Category]decimal.Decimal),
			}
			out.months[m] = sum
		}
		return sum
	}

	for _, row := range income {
		sum := bucket(row.Month)
		sum.Income[row.Category] = row.Total.Round(2)
		sum.TotalIncome = sum.TotalIncome.Add(row.Total)
	}
	for _, row := range expenses {
		sum := bucket(row.Month)
		sum.ExpensesByCategory[row.Category] = row.Total.Round(2)
		sum.TotalExpenses = sum.TotalExpenses.Add(row.Total)
	}

	for _, sum := range out.months {
		sum.TotalIncome = sum.TotalIncome.Round(2)
		sum.TotalExpenses = sum.TotalExpenses.Round(2)
		sum.Balance = sum.TotalIncome.Sub(sum.TotalExpenses).Round(2)
	}
	return out
}
