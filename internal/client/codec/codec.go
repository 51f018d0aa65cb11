// Package codec converts between user input, the typed DiaryEntry and the
// ledger's fixed-width wire representation. All functions are pure.
package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// Form field names, as reported in ValidationError.Field.
const (
	FieldWeightKg    = "weightKg"
	FieldSteps       = "steps"
	FieldCaloriesIn  = "caloriesIn"
	FieldCaloriesOut = "caloriesOut"
	FieldNote        = "note"
)

// ValidationError reports the first form field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// Encode validates a raw form and converts it into a DiaryEntry.
//
// Fields are checked in form order and the first failure is returned as a
// *ValidationError. The returned entry has a zero Timestamp.
func Encode(form models.RawForm) (models.DiaryEntry, error) {
	ruleErrs := map[string]validator.FieldError{}
	if err := validate.Struct(form); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return models.DiaryEntry{}, fmt.Errorf("validating form: %w", err)
		}
		for _, fe := range fes {
			if _, seen := ruleErrs[fe.Field()]; !seen {
				ruleErrs[fe.Field()] = fe
			}
		}
	}

	var (
		entry models.DiaryEntry
		err   error
		v     uint64
	)

	numeric := []struct {
		field string
		raw   string
		bits  int
		set   func(uint64)
	}{
		{FieldWeightKg, form.WeightKg, 16, func(u uint64) { entry.WeightKg = uint16(u) }},
		{FieldSteps, form.Steps, 32, func(u uint64) { entry.Steps = uint32(u) }},
		{FieldCaloriesIn, form.CaloriesIn, 16, func(u uint64) { entry.CaloriesIn = uint16(u) }},
		{FieldCaloriesOut, form.CaloriesOut, 16, func(u uint64) { entry.CaloriesOut = uint16(u) }},
	}

	for _, n := range numeric {
		if fe, ok := ruleErrs[n.field]; ok {
			return models.DiaryEntry{}, ruleError(fe)
		}
		v, err = parseUint(n.field, n.raw, n.bits)
		if err != nil {
			return models.DiaryEntry{}, err
		}
		n.set(v)
	}

	if fe, ok := ruleErrs[FieldNote]; ok {
		return models.DiaryEntry{}, ruleError(fe)
	}
	entry.Note = form.Note

	return entry, nil
}

func ruleError(fe validator.FieldError) *ValidationError {
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Reason: "is required"}
	case "max":
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("exceeds %s characters", fe.Param())}
	default:
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("failed %q rule", fe.Tag())}
	}
}

func parseUint(field, raw string, bits int) (uint64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	if len(s) > 1 && s[0] == '+' && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}

	v, err := strconv.ParseUint(s, 10, bits)
	if err == nil {
		return v, nil
	}

	if errors.Is(err, strconv.ErrRange) {
		limit := uint64(1)<<bits - 1
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("exceeds %d-bit range (max %d)", bits, limit)}
	}

	// 0x10, 0o17, 0b101 and 1_000 are integers, just not decimal ones.
	if _, perr := strconv.ParseUint(s, 0, 64); perr == nil || errors.Is(perr, strconv.ErrRange) {
		return 0, &ValidationError{Field: field, Reason: "must be a plain decimal integer"}
	}

	f, ferr := strconv.ParseFloat(s, 64)
	switch {
	case ferr != nil && !errors.Is(ferr, strconv.ErrRange), math.IsNaN(f):
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	case f < 0 || strings.HasPrefix(s, "-"):
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	case math.IsInf(f, 0):
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	case f == math.Trunc(f):
		return 0, &ValidationError{Field: field, Reason: "must be a plain decimal integer"}
	default:
		return 0, &ValidationError{Field: field, Reason: "must be a whole number"}
	}
}

// WireOf returns the addEntry arguments for e.
func WireOf(e models.DiaryEntry) models.WireEntry {
	return models.WireEntry{
		WeightKg:    e.WeightKg,
		Steps:       e.Steps,
		CaloriesIn:  e.CaloriesIn,
		CaloriesOut: e.CaloriesOut,
		Note:        e.Note,
	}
}

// TupleOf returns the wire tuple the ledger would report for e.
func TupleOf(e models.DiaryEntry) models.WireTuple {
	return models.WireTuple{e.Timestamp, e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note}
}
