package codec

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Decode maps a wire tuple into a DiaryEntry. It never fails: a missing,
// malformed, negative or out-of-range numeric element decodes as 0 and a
// missing or non-text note decodes as "".
func Decode(t models.WireTuple) models.DiaryEntry {
	return models.DiaryEntry{
		Timestamp:   coerceUint(at(t, models.TupleTimestamp), math.MaxUint64),
		WeightKg:    uint16(coerceUint(at(t, models.TupleWeightKg), math.MaxUint16)),
		Steps:       uint32(coerceUint(at(t, models.TupleSteps), math.MaxUint32)),
		CaloriesIn:  uint16(coerceUint(at(t, models.TupleCaloriesIn), math.MaxUint16)),
		CaloriesOut: uint16(coerceUint(at(t, models.TupleCaloriesOut), math.MaxUint16)),
		Note:        coerceText(at(t, models.TupleNote)),
	}
}

func at(t models.WireTuple, i int) any {
	if i < len(t) {
		return t[i]
	}
	return nil
}

// coerceUint converts v to an unsigned integer no greater than limit,
// falling back to 0.
func coerceUint(v any, limit uint64) uint64 {
	u, ok := toUint(v)
	if !ok || u > limit {
		return 0
	}
	return u
}

func toUint(v any) (uint64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case *big.Int:
		if x == nil || x.Sign() < 0 || !x.IsUint64() {
			return 0, false
		}
		return x.Uint64(), true
	case big.Int:
		return toUint(&x)
	case float32:
		return floatToUint(float64(x))
	case float64:
		return floatToUint(x)
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		return u, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, false
		}
		return uint64(rv.Int()), true
	case reflect.Pointer:
		if rv.IsNil() {
			return 0, false
		}
		return toUint(rv.Elem().Interface())
	}
	return 0, false
}

// floatToUint truncates toward zero.
func floatToUint(f float64) (uint64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

func coerceText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *string:
		if x != nil {
			return *x
		}
	case []byte:
		return string(x)
	}
	return ""
}
