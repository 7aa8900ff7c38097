package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/admin-go"
)

// parseID reads an identifier argument. Integers become int64, anything
// else stays a string.
func parseID(raw string) admin.Identifier {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func parseIDs(args []string) []admin.Identifier {
	ids := make([]admin.Identifier, len(args))
	for i, arg := range args {
		ids[i] = parseID(arg)
	}
	return ids
}

// parseValue reads a flag value as JSON, falling back to the raw string,
// so that views=10, published=true and ids=[1,2] keep their types.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// parseAssignments reads key=value pairs into a record.
func parseAssignments(pairs []string) (admin.Record, error) {
	out := admin.Record{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid assignment %q (want key=value)", pair)
		}
		out[key] = parseValue(value)
	}
	return out, nil
}

func parseOrder(raw string) (admin.Order, error) {
	if raw == "" {
		return admin.ASC, nil
	}
	order := admin.Order(strings.ToUpper(raw))
	if !order.Valid() {
		return "", errors.Errorf("invalid order %q (must be asc or desc)", raw)
	}
	return order, nil
}
