package sqlboiler_test

import (
	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/sqlboiler"
)

var _ = Describe("FilterMods", func() {
	posts := sqlboiler.Table{
		Name:          "posts",
		Columns:       []string{"title", "view_count", "user_id", "published_at"},
		SearchColumns: []string{"title", "content"},
	}

	It("should return no mods for an empty filter", func() {
		mods, err := sqlboiler.FilterMods(posts, admin.Filter{})
		Expect(err).ToNot(HaveOccurred())
		Expect(mods).To(BeEmpty())
	})

	It("should produce one where mod per entry", func() {
		mods, err := sqlboiler.FilterMods(posts, admin.Filter{
			"q":              "hello",
			"title":          "Hello",
			"view_count_gte": 10,
			"user_id":        []string{"a", "b"},
			"published_at":   nil,
			"id":             3,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(mods).To(HaveLen(6))
		for _, mod := range mods {
			Expect(modTypeName(mod)).To(Or(whereModMatcher(), MatchRegexp(`(?i)wherein`)))
		}
	})

	It("should use a raw clause for search", func() {
		mods, err := sqlboiler.FilterMods(posts, admin.Filter{"q": "hello"})
		Expect(err).ToNot(HaveOccurred())
		Expect(modTypeName(mods[0])).To(Equal("qm.QueryModFunc"))
	})

	It("should use WHERE IN for lists", func() {
		mods, err := sqlboiler.FilterMods(posts, admin.Filter{"user_id": []any{"a"}})
		Expect(err).ToNot(HaveOccurred())
		Expect(modTypeName(mods[0])).To(MatchRegexp(`(?i)wherein`))
	})

	It("should match nothing for an empty list", func() {
		mods, err := sqlboiler.FilterMods(posts, admin.Filter{"user_id": []any{}})
		Expect(err).ToNot(HaveOccurred())
		Expect(modTypeName(mods[0])).To(whereModMatcher())
	})

	DescribeTable("rejects columns outside the whitelist",
		func(filter admin.Filter) {
			_, err := sqlboiler.FilterMods(posts, filter)
			Expect(errors.Is(err, sqlboiler.ErrUnknownColumn)).To(BeTrue())
		},
		Entry("equality", admin.Filter{"password": "x"}),
		Entry("comparison", admin.Filter{"password_gte": "x"}),
		Entry("injection attempt", admin.Filter{"title; DROP TABLE posts": "x"}),
	)

	It("should reject search on tables without search columns", func() {
		_, err := sqlboiler.FilterMods(sqlboiler.Table{Name: "tags"}, admin.Filter{"q": "x"})
		Expect(err).To(MatchError(ContainSubstring("no search columns")))
	})
})
