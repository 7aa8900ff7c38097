package memory

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// SearchKey is the filter key matched against every string field.
const SearchKey = "q"

var operators = []struct {
	suffix string
	match  func(c int) bool
}{
	{"_gte", func(c int) bool { return c >= 0 }},
	{"_gt", func(c int) bool { return c > 0 }},
	{"_lte", func(c int) bool { return c <= 0 }},
	{"_lt", func(c int) bool { return c < 0 }},
	{"_neq", func(c int) bool { return c != 0 }},
}

// Matches reports whether record satisfies every entry of filter.
//
// Supported entries:
//   - "q": case-insensitive substring of any string field
//   - "<field>_gte", "_gt", "_lte", "_lt", "_neq": comparisons
//   - slice values: the field must equal one of the elements
//   - anything else: the field must equal the value
func Matches(record admin.Record, filter admin.Filter) bool {
	for key, want := range filter {
		if !matchEntry(record, key, want) {
			return false
		}
	}
	return true
}

func matchEntry(record admin.Record, key string, want any) bool {
	if key == SearchKey {
		needle := strings.ToLower(fmt.Sprint(want))
		return lo.SomeBy(lo.Values(record), func(v any) bool {
			s, ok := v.(string)
			return ok && strings.Contains(strings.ToLower(s), needle)
		})
	}

	for _, op := range operators {
		field, ok := strings.CutSuffix(key, op.suffix)
		if !ok {
			continue
		}
		got, present := record[field]
		if !present {
			return false
		}
		return op.match(Compare(got, want))
	}

	if values, ok := asSlice(want); ok {
		return lo.SomeBy(values, func(v any) bool {
			return Compare(record[key], v) == 0
		})
	}

	return Compare(record[key], want) == 0
}

func asSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Compare orders two field values. nil sorts first. Numbers compare by
// value whatever their Go type, and a number compared with a numeric string
// is compared as a number so that 5 and "5" are equal.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	x, aNum := toFloat(a)
	y, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(x, y)
	case aNum:
		if y, ok := parseFloat(b); ok {
			return cmp.Compare(x, y)
		}
	case bNum:
		if x, ok := parseFloat(a); ok {
			return cmp.Compare(x, y)
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(admin.IDKey(a), admin.IDKey(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func parseFloat(v any) (float64, bool) {
	str, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(str, 64)
	return f, err == nil
}
