package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells whether a record moves money in or out.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Category is one of the fixed set of record categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryIncome        Category = "income"
	CategoryOther         Category = "other"
)

// Categories returns the valid categories in their canonical order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryBills,
		CategoryShopping,
		CategoryHealth,
		CategoryEducation,
		CategoryIncome,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// CategoryNames returns the valid categories as plain strings, used for
// validation messages and the oneof validator tag.
func CategoryNames() []string {
	cats := Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals to and
// from ISO-8601 YYYY-MM-DD strings.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is one income or expense entry. ID and CreatedAt are assigned
// by the store on insert and are never client-settable.
type Record struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Date        Date            `json:"date"`
	Kind        Kind            `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListFilter narrows a record listing. Zero-valued fields impose no
// constraint; set fields are AND-combined.
type ListFilter struct {
	StartDate Date     // inclusive lower bound
	EndDate   Date     // inclusive upper bound
	Category  Category // exact match
	Kind      Kind     // exact match
}

// MonthCategorySum is one row of the store's aggregate query: the sum
// of all amounts for a (month, category) pair within one year and kind.
type MonthCategorySum struct {
	Month    int // 1..12
	Category Category
	Total    decimal.Decimal
}
