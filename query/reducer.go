package query

import (
	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// Reduce returns the state that results from applying intent to state.
//
// Reduce never fails: an intent carrying invalid input (a page below 1, an
// empty sort field, an unknown order) returns state unchanged. Changing the
// sort or the filter always goes back to page 1 and clears the selection.
func Reduce(state State, intent Intent) State {
	next := state.Clone()

	switch in := intent.(type) {
	case SetPage:
		if in.Page < 1 {
			return state
		}
		next.Page = in.Page

	case SetPerPage:
		if in.PerPage < 1 {
			return state
		}
		next.PerPage = in.PerPage
		next.Page = 1

	case SetSort:
		order := in.Order
		if order == "" {
			order = admin.ASC
		}
		if in.Field == "" || !order.Valid() {
			return state
		}
		next.Sort = admin.Sort{Field: in.Field, Order: order}
		resetQuery(&next)

	case ToggleSort:
		if in.Field == "" {
			return state
		}
		if next.Sort.Field == in.Field {
			next.Sort.Order = next.Sort.Order.Flip()
		} else {
			next.Sort = admin.Sort{Field: in.Field, Order: admin.ASC}
		}
		resetQuery(&next)

	case SetFilter:
		next.Filter = mergeFilter(next.Filter, in.Filter)
		resetQuery(&next)

	case SelectIDs:
		next.SelectedIDs = uniqueIDs(in.IDs)

	case ToggleSelection:
		if in.ID == nil {
			return state
		}
		if next.IsSelected(in.ID) {
			key := admin.IDKey(in.ID)
			next.SelectedIDs = lo.Reject(next.SelectedIDs, func(id admin.Identifier, _ int) bool {
				return admin.IDKey(id) == key
			})
		} else {
			next.SelectedIDs = append(next.SelectedIDs, in.ID)
		}

	case ClearSelection:
		next.SelectedIDs = []admin.Identifier{}

	default:
		return state
	}

	return next
}

// resetQuery applies the side effects of a sort or filter change.
func resetQuery(s *State) {
	s.Page = 1
	s.SelectedIDs = []admin.Identifier{}
}

func mergeFilter(current, partial admin.Filter) admin.Filter {
	merged := current.Clone()
	for key, value := range partial {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	return merged
}
