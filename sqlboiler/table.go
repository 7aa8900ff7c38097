package sqlboiler

import (
	"slices"

	"github.com/aarondl/strmangle"

	"github.com/nrfta/admin-go"
)

// Table maps a resource onto a SQL table.
type Table struct {
	// Name is the table name, optionally schema qualified.
	Name string
	// IDColumn is the primary key column. Defaults to "id".
	IDColumn string
	// Columns are the columns that may be read, written, sorted and
	// filtered on. Anything else is rejected.
	Columns []string
	// SearchColumns are matched by the "q" filter with ILIKE.
	SearchColumns []string
}

func (t Table) idColumn() string {
	if t.IDColumn == "" {
		return admin.IDField
	}
	return t.IDColumn
}

// column resolves a record field into a whitelisted column. The "id"
// field always resolves to the primary key.
func (t Table) column(field string) (string, bool) {
	if field == admin.IDField || field == t.idColumn() {
		return t.idColumn(), true
	}
	if slices.Contains(t.Columns, field) {
		return field, true
	}
	return "", false
}

// selectColumns returns every readable column, primary key first.
func (t Table) selectColumns() []string {
	cols := []string{t.idColumn()}
	for _, c := range t.Columns {
		if c != t.idColumn() {
			cols = append(cols, c)
		}
	}
	return cols
}

func quote(ident string) string {
	return strmangle.IdentQuote('"', '"', ident)
}

func quoteAll(idents []string) []string {
	return strmangle.IdentQuoteSlice('"', '"', idents)
}
