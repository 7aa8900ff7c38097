package sqlboiler

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// SearchKey is the filter key matched against a table's search columns.
const SearchKey = "q"

// ErrUnknownColumn is returned for filters and sorts on columns that are
// not part of a table's whitelist.
var ErrUnknownColumn = errors.New("unknown column")

var comparisons = []struct {
	suffix string
	op     string
}{
	{"_gte", ">="},
	{"_gt", ">"},
	{"_lte", "<="},
	{"_lt", "<"},
	{"_neq", "<>"},
}

// FilterMods translates filter into WHERE query mods for table.
//
// Supported entries:
//   - "q": ILIKE match against any search column
//   - "<column>_gte", "_gt", "_lte", "_lt", "_neq": comparisons
//   - slice values: column IN (...)
//   - nil: column IS NULL
//   - anything else: column = value
//
// Keys are processed in sorted order so the produced SQL is stable.
func FilterMods(t Table, filter admin.Filter) ([]qm.QueryMod, error) {
	keys := lo.Keys(filter)
	slices.Sort(keys)

	mods := make([]qm.QueryMod, 0, len(keys))
	for _, key := range keys {
		mod, err := filterMod(t, key, filter[key])
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func filterMod(t Table, key string, value any) (qm.QueryMod, error) {
	if key == SearchKey {
		return searchMod(t, value)
	}

	for _, cmp := range comparisons {
		field, ok := strings.CutSuffix(key, cmp.suffix)
		if !ok {
			continue
		}
		col, ok := t.column(field)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownColumn, "filter %q", key)
		}
		return qm.Where(fmt.Sprintf("%s %s ?", quote(col), cmp.op), convertValueForSQL(value)), nil
	}

	col, ok := t.column(key)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownColumn, "filter %q", key)
	}

	if value == nil {
		return qm.Where(quote(col) + " IS NULL"), nil
	}
	if values, ok := asSlice(value); ok {
		return inMod(col, values), nil
	}
	return qm.Where(quote(col)+" = ?", convertValueForSQL(value)), nil
}

// inMod matches col against values. An empty list matches nothing.
func inMod(col string, values []any) qm.QueryMod {
	if len(values) == 0 {
		return qm.Where("1 = 0")
	}
	args := lo.Map(values, func(v any, _ int) any { return convertValueForSQL(v) })
	return qm.WhereIn(quote(col)+" IN ?", args...)
}

func searchMod(t Table, value any) (qm.QueryMod, error) {
	if len(t.SearchColumns) == 0 {
		return nil, errors.Errorf("table %s has no search columns", t.Name)
	}

	pattern := "%" + escapeLike(fmt.Sprint(value)) + "%"
	parts := make([]string, len(t.SearchColumns))
	args := make([]any, len(t.SearchColumns))
	for i, col := range t.SearchColumns {
		parts[i] = fmt.Sprintf("%s::text ILIKE ?", quote(col))
		args[i] = pattern
	}
	return rawWhereClause("("+strings.Join(parts, " OR ")+")", args), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// rawWhereClause creates a custom query mod that injects a WHERE clause directly.
func rawWhereClause(clause string, args []any) qm.QueryMod {
	return qm.QueryModFunc(func(q *queries.Query) {
		queries.AppendWhere(q, clause, args...)
	})
}

func asSlice(v any) ([]any, bool) {
	if _, ok := v.([]byte); ok {
		return nil, false
	}
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

// convertValueForSQL converts JSON-decoded values to proper SQL types.
// JSON unmarshaling can change types (e.g., int → float64), so we normalize them here.
func convertValueForSQL(val any) any {
	switch v := val.(type) {
	case string:
		// Try to parse as time.Time if it's in RFC3339 format
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		return v

	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
		return v

	case int, int32, int64, uint, uint32, uint64, float32, bool, time.Time, []byte:
		return v

	case nil:
		return nil

	default:
		// For unknown types, convert to string
		return fmt.Sprintf("%v", v)
	}
}
