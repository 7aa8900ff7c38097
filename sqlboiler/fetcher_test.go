package sqlboiler_test

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/sqlboiler"
)

type user struct {
	ID   string
	Name string
}

var _ = Describe("Fetcher", func() {
	var (
		ctx        context.Context
		queryMods  []qm.QueryMod
		countMods  []qm.QueryMod
		rows       []*user
		countErr   error
		fetcher    *sqlboiler.Fetcher[*user]
		toRecord   func(*user) (admin.Record, error)
		whereTitle []qm.QueryMod
	)

	BeforeEach(func() {
		ctx = context.Background()
		rows = []*user{{ID: "1", Name: "Alice"}, {ID: "2", Name: "Bob"}}
		countErr = nil
		whereTitle = []qm.QueryMod{qm.Where("name = ?", "Alice")}

		fetcher = sqlboiler.NewFetcher(
			func(_ context.Context, mods ...qm.QueryMod) ([]*user, error) {
				queryMods = mods
				return rows, nil
			},
			func(_ context.Context, mods ...qm.QueryMod) (int64, error) {
				countMods = mods
				return 42, countErr
			},
		)
		toRecord = func(u *user) (admin.Record, error) {
			return admin.Record{"id": u.ID, "name": u.Name}, nil
		}
	})

	It("should count with the filter only and fetch the page", func() {
		res, err := fetcher.List(ctx,
			admin.Pagination{Page: 3, PerPage: 10},
			admin.Sort{Field: "name", Order: admin.ASC},
			whereTitle, toRecord)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Total).To(Equal(42))
		Expect(res.Data).To(Equal([]admin.Record{
			{"id": "1", "name": "Alice"},
			{"id": "2", "name": "Bob"},
		}))

		Expect(countMods).To(HaveLen(1))
		Expect(queryMods).To(HaveLen(4))
		Expect(modTypeName(queryMods[0])).To(whereModMatcher())
		Expect(modTypeName(queryMods[1])).To(Equal("qm.offsetQueryMod"))
		Expect(modTypeName(queryMods[2])).To(Equal("qm.limitQueryMod"))
		Expect(modTypeName(queryMods[3])).To(Equal("qm.orderByQueryMod"))
	})

	It("should not touch the caller's where slice", func() {
		where := make([]qm.QueryMod, 1, 8)
		where[0] = whereTitle[0]

		_, err := fetcher.List(ctx, admin.Pagination{Page: 1, PerPage: 5}, admin.Sort{}, where, toRecord)
		Expect(err).ToNot(HaveOccurred())
		Expect(where).To(HaveLen(1))
		Expect(where[:cap(where)][1]).To(BeNil())
	})

	It("should return count errors", func() {
		countErr = errors.New("count failed")
		_, err := fetcher.List(ctx, admin.Pagination{}, admin.Sort{}, nil, toRecord)
		Expect(err).To(MatchError("count failed"))
	})

	It("should return transform errors", func() {
		_, err := fetcher.List(ctx, admin.Pagination{}, admin.Sort{}, nil, func(u *user) (admin.Record, error) {
			return nil, errors.New("bad row")
		})
		Expect(err).To(MatchError(ContainSubstring("bad row")))
	})
})
