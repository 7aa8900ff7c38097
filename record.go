package admin

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/copystructure"
	"github.com/samber/lo"
)

// IDField is the record field holding the identifier.
const IDField = "id"

// Identifier identifies a record within a resource.
// Backends return strings, integers or JSON numbers; use IDKey to compare them.
type Identifier = any

// Record is a single item of a resource, keyed by field name.
//
// Records are treated as immutable values: every component that needs to
// change one works on a Clone.
type Record map[string]any

// ID returns the record identifier, or nil when the record has none.
func (r Record) ID() Identifier {
	if r == nil {
		return nil
	}
	return r[IDField]
}

// Clone returns a deep copy of the record.
// Nested maps and slices are copied so the clone can be mutated freely.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	copied, err := copystructure.Copy(map[string]any(r))
	if err != nil {
		// copystructure only fails on unsupported kinds (channels, funcs);
		// fall back to a shallow copy for those.
		shallow := make(Record, len(r))
		for k, v := range r {
			shallow[k] = v
		}
		return shallow
	}

	return Record(copied.(map[string]any))
}

// Merge returns a copy of the record with the given fields applied on top.
func (r Record) Merge(data Record) Record {
	merged := r.Clone()
	if merged == nil {
		merged = make(Record, len(data))
	}
	for k, v := range data.Clone() {
		merged[k] = v
	}
	return merged
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}

	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// IDKey normalizes an identifier into a comparable key.
//
// Integers, integral floats and their string forms map to the same key,
// so 5, 5.0 and "5" are considered the same identifier.
//
// Example:
//
//	admin.IDKey(5) == admin.IDKey("5") // true
func IDKey(id Identifier) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return IDKey(float64(v))
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// SameID reports whether two identifiers designate the same record.
func SameID(a, b Identifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return IDKey(a) == IDKey(b)
}

// ContainsID reports whether ids contains id.
func ContainsID(ids []Identifier, id Identifier) bool {
	key := IDKey(id)
	return lo.ContainsBy(ids, func(candidate Identifier) bool {
		return IDKey(candidate) == key
	})
}
