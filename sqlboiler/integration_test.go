package sqlboiler_test

import (
	"context"

	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/sqlboiler"
)

var _ = Describe("Provider against PostgreSQL", Ordered, Label("integration"), func() {
	var (
		ctx       context.Context
		container *Container
		provider  *sqlboiler.Provider
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = SetupPostgres(ctx)
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(func() {
			Expect(container.Terminate(context.Background())).To(Succeed())
		})

		provider = sqlboiler.New(container.DB, map[string]sqlboiler.Table{
			"posts": {
				Name:          "posts",
				Columns:       []string{"title", "content", "view_count", "author_id", "created_at"},
				SearchColumns: []string{"title", "content"},
			},
		})
	})

	BeforeEach(func() {
		Expect(SeedPosts(ctx, container.DB, 25)).To(Succeed())
	})

	ids := func(records []admin.Record) []int64 {
		out := make([]int64, 0, len(records))
		for _, r := range records {
			out = append(out, r.ID().(int64))
		}
		return out
	}

	Describe("GetList", func() {
		It("should page, sort and count", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 2, PerPage: 10},
				Sort:       admin.Sort{Field: "view_count", Order: admin.DESC},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Total).To(Equal(25))
			Expect(ids(res.Data)).To(Equal([]int64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}))
		})

		It("should sort by the default sort when none is given", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 1, PerPage: 3},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(res.Data)).To(Equal([]int64{25, 24, 23}))
		})

		It("should filter with comparisons, lists and search", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 1, PerPage: 50},
				Sort:       admin.Sort{Field: "id", Order: admin.ASC},
				Filter: admin.Filter{
					"view_count_gte": 100,
					"author_id":      []any{1, 2},
					"q":              "post 1",
				},
			})
			Expect(err).ToNot(HaveOccurred())
			// Post 10..Post 19 written by authors 1 and 2
			Expect(ids(res.Data)).To(Equal([]int64{10, 12, 13, 15, 16, 18, 19}))
			Expect(res.Total).To(Equal(7))
		})

		It("should list references", func() {
			res, err := provider.GetManyReference(ctx, "posts", admin.GetManyReferenceParams{
				Target:     "author_id",
				ID:         1,
				Pagination: admin.Pagination{Page: 1, PerPage: 5},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Total).To(Equal(8))
			Expect(res.Data).To(HaveLen(5))
		})
	})

	Describe("reads", func() {
		It("should get one", func() {
			res, err := provider.GetOne(ctx, "posts", admin.GetOneParams{ID: 3})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data["title"]).To(Equal("Post 03"))
		})

		It("should report missing rows", func() {
			_, err := provider.GetOne(ctx, "posts", admin.GetOneParams{ID: 999})
			Expect(errors.Is(err, sqlboiler.ErrNotFound)).To(BeTrue())
		})

		It("should get many", func() {
			res, err := provider.GetMany(ctx, "posts", admin.GetManyParams{IDs: []admin.Identifier{1, "2", 3.0}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(HaveLen(3))
		})
	})

	Describe("writes", func() {
		It("should create and return the stored row", func() {
			res, err := provider.Create(ctx, "posts", admin.CreateParams{Data: admin.Record{"title": "new", "view_count": 5}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data.ID()).To(Equal(int64(26)))
			Expect(res.Data["title"]).To(Equal("new"))
			Expect(res.Data["created_at"]).ToNot(BeNil())
		})

		It("should update", func() {
			res, err := provider.Update(ctx, "posts", admin.UpdateParams{ID: 1, Data: admin.Record{"title": "edited", "id": 1}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data["title"]).To(Equal("edited"))
		})

		It("should delete and return the deleted row", func() {
			res, err := provider.Delete(ctx, "posts", admin.DeleteParams{ID: 2})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data["title"]).To(Equal("Post 02"))

			_, err = provider.GetOne(ctx, "posts", admin.GetOneParams{ID: 2})
			Expect(errors.Is(err, sqlboiler.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("batch verbs", func() {
		It("should update many in one statement and return the touched ids", func() {
			res, err := provider.UpdateMany(ctx, "posts", admin.UpdateManyParams{
				IDs:  []admin.Identifier{1, 2, 999},
				Data: admin.Record{"view_count": 0},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(ConsistOf(int64(1), int64(2)))
		})

		It("should delete many", func() {
			res, err := provider.DeleteMany(ctx, "posts", admin.DeleteManyParams{IDs: []admin.Identifier{4, 5}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(ConsistOf(int64(4), int64(5)))

			list, err := provider.GetList(ctx, "posts", admin.ListParams{})
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Total).To(Equal(23))
		})
	})
})
