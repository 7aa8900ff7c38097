package query

import "github.com/nrfta/admin-go"

// Intent is a requested change to a list's query state.
// Intents are plain values so they can be logged, compared and replayed.
type Intent interface {
	intent()
}

// SetPage moves to the given 1-based page.
type SetPage struct {
	Page int
}

// SetPerPage changes the page size and goes back to the first page.
type SetPerPage struct {
	PerPage int
}

// SetSort sorts by Field. An empty Order means ASC.
type SetSort struct {
	Field string
	Order admin.Order
}

// SetFilter merges Filter into the current filter.
// Keys mapped to nil are removed from the filter.
type SetFilter struct {
	Filter admin.Filter
}

// ToggleSort flips the order when Field is already the sort field,
// otherwise sorts by Field ascending.
type ToggleSort struct {
	Field string
}

// SelectIDs replaces the selection.
type SelectIDs struct {
	IDs []admin.Identifier
}

// ToggleSelection adds ID to the selection, or removes it when already selected.
type ToggleSelection struct {
	ID admin.Identifier
}

// ClearSelection empties the selection.
type ClearSelection struct{}

func (SetPage) intent()         {}
func (SetPerPage) intent()      {}
func (SetSort) intent()         {}
func (SetFilter) intent()       {}
func (ToggleSort) intent()      {}
func (SelectIDs) intent()       {}
func (ToggleSelection) intent() {}
func (ClearSelection) intent()  {}
