package core

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Field error kinds, machine-readable and stable across releases.
const (
	ErrKindMissingBody        = "missing_body"
	ErrKindInvalidAmount      = "invalid_amount"
	ErrKindInvalidCategory    = "invalid_category"
	ErrKindInvalidDate        = "invalid_date"
	ErrKindInvalidType        = "invalid_type"
	ErrKindInvalidDescription = "invalid_description"
)

// RecordInput is the raw client payload for creating a record. The
// struct tags drive go-playground validation; every violated rule is
// collected, so one response enumerates all offending fields.
type RecordInput struct {
	Amount      AmountField `json:"amount" validate:"amount"`
	Description string      `json:"description" validate:"required,max=255"`
	Category    string      `json:"category" validate:"required,oneof=food transport entertainment bills shopping health education income other"`
	Date        string      `json:"date" validate:"required,dateiso"`
	Kind        string      `json:"type" validate:"required,oneof=expense income"`
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationError carries every field violation found in one payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// MissingBodyError is the validation outcome for an absent or
// undecodable request payload.
func MissingBodyError() *ValidationError {
	return &ValidationError{Fields: []FieldError{{
		Field:   "body",
		Kind:    ErrKindMissingBody,
		Message: "JSON data required",
	}}}
}

// Validator checks RecordInput payloads against the record invariants.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Expose AmountField to the validator as its decoded decimal; an
	// unparsed field surfaces as decimal zero, which the amount rule
	// rejects the same way as a non-positive value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if af, ok := field.Interface().(AmountField); ok {
			d, parsed := af.Value()
			if !parsed {
				return decimal.Zero
			}
			return d
		}
		return nil
	}, AmountField{})

	// Round first: a sub-cent value like 0.004 coerces to 0.00 and must
	// fail here, not at the store's amount_cents > 0 check.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.Round(2).IsPositive()
	})

	_ = v.RegisterValidation("dateiso", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// ValidateRecord checks every field of in and, when all pass, returns
// the Record ready for insertion (ID and CreatedAt still unset). The
// amount is rounded half-up to two decimals. On failure the returned
// ValidationError lists every violated field, not just the first.
func (rv *Validator) ValidateRecord(in RecordInput) (Record, *ValidationError) {
	if err := rv.v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Record{}, MissingBodyError()
		}
		out := &ValidationError{}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, fieldError(fe))
		}
		return Record{}, out
	}

	amount, _ := in.Amount.Value()
	date, err := ParseDate(in.Date)
	if err != nil {
		// Unreachable after the dateiso rule, kept as a guard.
		return Record{}, &ValidationError{Fields: []FieldError{dateFieldError()}}
	}

	return Record{
		Amount:      amount.Round(2),
		Description: in.Description,
		Category:    Category(in.Category),
		Date:        date,
		Kind:        Kind(in.Kind),
	}, nil
}

func fieldError(fe validator.FieldError) FieldError {
	switch fe.StructField() {
	case "Amount":
		return FieldError{
			Field:   "amount",
			Kind:    ErrKindInvalidAmount,
			Message: "amount must be a number greater than 0",
		}
	case "Category":
		return FieldError{
			Field:   "category",
			Kind:    ErrKindInvalidCategory,
			Message: "invalid category, options: " + strings.Join(CategoryNames(), ", "),
		}
	case "Date":
		return dateFieldError()
	case "Kind":
		return FieldError{
			Field:   "type",
			Kind:    ErrKindInvalidType,
			Message: "type must be one of: expense, income",
		}
	case "Description":
		return FieldError{
			Field:   "description",
			Kind:    ErrKindInvalidDescription,
			Message: "description must be non-empty and at most 255 characters",
		}
	default:
		return FieldError{
			Field:   strings.ToLower(fe.StructField()),
			Kind:    "invalid_field",
			Message: "invalid value",
		}
	}
}

func dateFieldError() FieldError {
	return FieldError{
		Field:   "date",
		Kind:    ErrKindInvalidDate,
		Message: "date must be in ISO format (YYYY-MM-DD)",
	}
}
