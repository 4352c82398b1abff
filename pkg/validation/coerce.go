package validation

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/qtree/pkg/domain"
)

// IsEmpty reports whether v counts as an absent answer: nil, an empty or
// blank string, or an empty list.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToFloat converts numeric values, json.Number and numeric strings to a
// finite float64. NaN and infinities are not numbers here.
func ToFloat(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ToStrings converts string lists, mixed lists of strings and option items
// to a []string. Option items contribute their ID.
func ToStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []domain.OptionItem:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = item.ID
		}
		return out, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			switch s := e.(type) {
			case string:
				out = append(out, s)
			case domain.OptionItem:
				out = append(out, s.ID)
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// Equal compares two answer values. Numbers compare by value, string lists
// element-wise, and everything else with reflect.DeepEqual.
func Equal(a, b any) bool {
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	if sa, ok := ToStrings(a); ok {
		sb, ok := ToStrings(b)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if sa[i] != sb[i] {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// numeric is ToFloat without the string parsing, so "1" never equals 1.
func numeric(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return ToFloat(v)
}
