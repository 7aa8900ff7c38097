package query_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/query"
)

var _ = Describe("Reduce", func() {
	var state query.State

	BeforeEach(func() {
		state = query.NewState(admin.NewListConfig().WithDefaultPerPage(25))
	})

	withPageAndSelection := func(s query.State) query.State {
		s = query.Reduce(s, query.SetPage{Page: 4})
		return query.Reduce(s, query.SelectIDs{IDs: []admin.Identifier{1, 2}})
	}

	It("should start with defaults", func() {
		Expect(state.Page).To(Equal(1))
		Expect(state.PerPage).To(Equal(25))
		Expect(state.Sort).To(Equal(admin.Sort{Field: "id", Order: admin.DESC}))
		Expect(state.Filter).To(BeEmpty())
		Expect(state.SelectedIDs).To(BeEmpty())
	})

	Describe("SetPage", func() {
		It("should move to the page", func() {
			next := query.Reduce(state, query.SetPage{Page: 3})
			Expect(next.Page).To(Equal(3))
		})

		It("should ignore pages below 1", func() {
			Expect(query.Reduce(state, query.SetPage{Page: 0})).To(Equal(state))
			Expect(query.Reduce(state, query.SetPage{Page: -2})).To(Equal(state))
		})

		It("should keep the selection", func() {
			s := withPageAndSelection(state)
			next := query.Reduce(s, query.SetPage{Page: 2})
			Expect(next.SelectedIDs).To(HaveLen(2))
		})
	})

	Describe("SetPerPage", func() {
		It("should reset the page", func() {
			s := query.Reduce(state, query.SetPage{Page: 5})
			next := query.Reduce(s, query.SetPerPage{PerPage: 50})

			Expect(next.PerPage).To(Equal(50))
			Expect(next.Page).To(Equal(1))
		})

		It("should ignore non-positive sizes", func() {
			Expect(query.Reduce(state, query.SetPerPage{PerPage: 0})).To(Equal(state))
		})
	})

	Describe("SetSort", func() {
		It("should reset page and selection", func() {
			s := withPageAndSelection(state)
			next := query.Reduce(s, query.SetSort{Field: "title", Order: admin.DESC})

			Expect(next.Sort).To(Equal(admin.Sort{Field: "title", Order: admin.DESC}))
			Expect(next.Page).To(Equal(1))
			Expect(next.SelectedIDs).To(BeEmpty())
		})

		It("should reset even when the sort does not change", func() {
			s := withPageAndSelection(state)
			next := query.Reduce(s, query.SetSort{Field: "id", Order: admin.DESC})

			Expect(next.Page).To(Equal(1))
			Expect(next.SelectedIDs).To(BeEmpty())
		})

		It("should default to ascending order", func() {
			next := query.Reduce(state, query.SetSort{Field: "title"})
			Expect(next.Sort.Order).To(Equal(admin.ASC))
		})

		It("should ignore empty fields and unknown orders", func() {
			Expect(query.Reduce(state, query.SetSort{Field: ""})).To(Equal(state))
			Expect(query.Reduce(state, query.SetSort{Field: "title", Order: "sideways"})).To(Equal(state))
		})
	})

	Describe("ToggleSort", func() {
		It("should flip the order of the current field", func() {
			next := query.Reduce(state, query.ToggleSort{Field: "id"})
			Expect(next.Sort).To(Equal(admin.Sort{Field: "id", Order: admin.ASC}))
		})

		It("should sort a new field ascending", func() {
			next := query.Reduce(state, query.ToggleSort{Field: "title"})
			Expect(next.Sort).To(Equal(admin.Sort{Field: "title", Order: admin.ASC}))
		})

		It("should return to the original order when applied twice on the same field", func() {
			next := query.Reduce(query.Reduce(state, query.ToggleSort{Field: "id"}), query.ToggleSort{Field: "id"})
			Expect(next.Sort).To(Equal(state.Sort))
		})

		It("should be stable when applied twice on different fields", func() {
			once := query.Reduce(state, query.ToggleSort{Field: "title"})
			twice := query.Reduce(query.Reduce(state, query.ToggleSort{Field: "views"}), query.ToggleSort{Field: "title"})
			Expect(twice.Sort).To(Equal(once.Sort))
		})

		It("should reset page and selection", func() {
			next := query.Reduce(withPageAndSelection(state), query.ToggleSort{Field: "title"})
			Expect(next.Page).To(Equal(1))
			Expect(next.SelectedIDs).To(BeEmpty())
		})
	})

	Describe("SetFilter", func() {
		It("should merge and remove nil keys", func() {
			s := query.Reduce(state, query.SetFilter{Filter: admin.Filter{"a": 1}})
			s = query.Reduce(s, query.SetFilter{Filter: admin.Filter{"a": nil, "b": 2}})

			Expect(s.Filter).To(Equal(admin.Filter{"b": 2}))
		})

		It("should equal the left fold of successive merges", func() {
			steps := []admin.Filter{
				{"status": "draft", "q": "go"},
				{"views_gte": 10},
				{"q": nil, "status": "published"},
				{"missing": nil},
			}

			s := state
			for _, f := range steps {
				s = query.Reduce(s, query.SetFilter{Filter: f})
			}

			Expect(s.Filter).To(Equal(admin.Filter{"status": "published", "views_gte": 10}))
		})

		It("should reset page and selection", func() {
			next := query.Reduce(withPageAndSelection(state), query.SetFilter{Filter: admin.Filter{"q": "x"}})
			Expect(next.Page).To(Equal(1))
			Expect(next.SelectedIDs).To(BeEmpty())
		})

		It("should not mutate the previous state", func() {
			s := query.Reduce(state, query.SetFilter{Filter: admin.Filter{"a": 1}})
			_ = query.Reduce(s, query.SetFilter{Filter: admin.Filter{"a": 2}})

			Expect(s.Filter).To(Equal(admin.Filter{"a": 1}))
		})
	})

	Describe("selection", func() {
		It("should replace the selection without duplicates", func() {
			next := query.Reduce(state, query.SelectIDs{IDs: []admin.Identifier{1, "1", 2, nil}})
			Expect(next.SelectedIDs).To(Equal([]admin.Identifier{1, 2}))
		})

		It("should toggle identifiers", func() {
			s := query.Reduce(state, query.ToggleSelection{ID: 1})
			s = query.Reduce(s, query.ToggleSelection{ID: 2})
			Expect(s.SelectedIDs).To(Equal([]admin.Identifier{1, 2}))

			s = query.Reduce(s, query.ToggleSelection{ID: "1"})
			Expect(s.SelectedIDs).To(Equal([]admin.Identifier{2}))
			Expect(s.IsSelected(2)).To(BeTrue())
		})

		It("should ignore nil identifiers", func() {
			Expect(query.Reduce(state, query.ToggleSelection{ID: nil})).To(Equal(state))
		})

		It("should clear the selection", func() {
			s := query.Reduce(state, query.SelectIDs{IDs: []admin.Identifier{1}})
			Expect(query.Reduce(s, query.ClearSelection{}).SelectedIDs).To(BeEmpty())
		})
	})

	Describe("SameQuery", func() {
		It("should ignore the selection", func() {
			s := query.Reduce(state, query.SelectIDs{IDs: []admin.Identifier{1}})
			Expect(s.SameQuery(state)).To(BeTrue())
		})

		It("should compare page, sort and filter", func() {
			Expect(query.Reduce(state, query.SetPage{Page: 2}).SameQuery(state)).To(BeFalse())
			Expect(query.Reduce(state, query.ToggleSort{Field: "id"}).SameQuery(state)).To(BeFalse())
			Expect(query.Reduce(state, query.SetFilter{Filter: admin.Filter{"a": 1}}).SameQuery(state)).To(BeFalse())
			Expect(query.Reduce(state, query.SetFilter{Filter: admin.Filter{"a": nil}}).SameQuery(state)).To(BeTrue())
		})
	})

	It("should build list params", func() {
		s := query.Reduce(state, query.SetFilter{Filter: admin.Filter{"a": 1}})
		params := s.ListParams()

		Expect(params.Pagination).To(Equal(admin.Pagination{Page: 1, PerPage: 25}))
		Expect(params.Filter).To(Equal(admin.Filter{"a": 1}))

		params.Filter["a"] = 2
		Expect(s.Filter["a"]).To(Equal(1))
	})
})
