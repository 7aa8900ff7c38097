// Package query holds the query state of admin lists and the pure reducer
// that moves it from one value to the next.
//
// A State describes one list: the page being shown, the page size, the sort
// and the filter, plus the identifiers selected for bulk actions. States are
// values; Reduce never mutates its input.
//
// Example usage:
//
//	state := query.NewState(admin.NewListConfig())
//	state = query.Reduce(state, query.SetFilter{Filter: admin.Filter{"status": "published"}})
//	state = query.Reduce(state, query.ToggleSort{Field: "title"})
package query

import (
	"reflect"

	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// State is the query state of a single list.
type State struct {
	Page        int
	PerPage     int
	Sort        admin.Sort
	Filter      admin.Filter
	SelectedIDs []admin.Identifier
}

// NewState returns the initial state of a list: page 1, the configured page
// size and default sort, an empty filter and no selection.
func NewState(cfg *admin.ListConfig) State {
	if cfg == nil {
		cfg = admin.NewListConfig()
	}

	return State{
		Page:        1,
		PerPage:     cfg.EffectivePerPage(0),
		Sort:        cfg.DefaultSort,
		Filter:      admin.Filter{},
		SelectedIDs: []admin.Identifier{},
	}
}

// Clone returns a copy of the state that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Filter = admin.Filter(admin.Record(s.Filter).Clone())
	if out.Filter == nil {
		out.Filter = admin.Filter{}
	}
	out.SelectedIDs = append([]admin.Identifier{}, s.SelectedIDs...)
	return out
}

// SameQuery reports whether both states would fetch the same page.
// The selection is ignored.
func (s State) SameQuery(other State) bool {
	return s.Page == other.Page &&
		s.PerPage == other.PerPage &&
		s.Sort == other.Sort &&
		sameFilter(s.Filter, other.Filter)
}

// Pagination returns the page and page size of the state.
func (s State) Pagination() admin.Pagination {
	return admin.Pagination{Page: s.Page, PerPage: s.PerPage}
}

// ListParams returns the GetList parameters for the state.
func (s State) ListParams() admin.ListParams {
	return admin.ListParams{
		Pagination: s.Pagination(),
		Sort:       s.Sort,
		Filter:     s.Filter.Clone(),
	}
}

// IsSelected reports whether id is part of the selection.
func (s State) IsSelected(id admin.Identifier) bool {
	return admin.ContainsID(s.SelectedIDs, id)
}

func sameFilter(a, b admin.Filter) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// uniqueIDs drops duplicate identifiers, keeping the first occurrence.
func uniqueIDs(ids []admin.Identifier) []admin.Identifier {
	return lo.UniqBy(lo.Filter(ids, func(id admin.Identifier, _ int) bool {
		return id != nil
	}), admin.IDKey)
}
