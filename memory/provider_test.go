package memory_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/memory"
)

func seedPosts(n int) []admin.Record {
	out := make([]admin.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, admin.Record{
			"id":        i,
			"title":     fmt.Sprintf("post %02d", i),
			"views":     i * 10,
			"author_id": i%2 + 1,
		})
	}
	return out
}

var _ = Describe("Provider", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.New(map[string][]admin.Record{
			"posts": seedPosts(25),
			"users": {{"id": 1, "name": "ann"}, {"id": 2, "name": "bob"}},
		})
	})

	It("should not share memory with the seed", func() {
		seed := seedPosts(1)
		p := memory.New(map[string][]admin.Record{"posts": seed})
		seed[0]["title"] = "changed"

		Expect(p.Records("posts")[0]["title"]).To(Equal("post 01"))
	})

	It("should reject unknown resources for every verb", func() {
		for _, params := range []admin.Params{
			admin.ListParams{}, admin.GetOneParams{ID: 1}, admin.GetManyParams{},
			admin.GetManyReferenceParams{Target: "x"}, admin.CreateParams{}, admin.UpdateParams{ID: 1},
			admin.UpdateManyParams{}, admin.DeleteParams{ID: 1}, admin.DeleteManyParams{},
		} {
			_, err := admin.Dispatch(ctx, provider, "ghosts", params)
			Expect(errors.Is(err, admin.ErrUnknownResource)).To(BeTrue(), params.Verb().String())
		}
	})

	Describe("GetList", func() {
		It("should paginate with the total of all matches", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 3, PerPage: 10},
				Sort:       admin.Sort{Field: "id", Order: admin.ASC},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Total).To(Equal(25))
			Expect(admin.RecordIDs(res.Data)).To(Equal([]admin.Identifier{21, 22, 23, 24, 25}))
		})

		It("should sort descending", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 1, PerPage: 3},
				Sort:       admin.Sort{Field: "views", Order: admin.DESC},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(admin.RecordIDs(res.Data)).To(Equal([]admin.Identifier{25, 24, 23}))
		})

		It("should filter before paginating", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 1, PerPage: 5},
				Sort:       admin.Sort{Field: "id", Order: admin.ASC},
				Filter:     admin.Filter{"views_gte": 200},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Total).To(Equal(6))
			Expect(admin.RecordIDs(res.Data)).To(Equal([]admin.Identifier{20, 21, 22, 23, 24}))
		})

		It("should return an empty page past the end", func() {
			res, err := provider.GetList(ctx, "posts", admin.ListParams{
				Pagination: admin.Pagination{Page: 9, PerPage: 10},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(BeEmpty())
			Expect(res.Total).To(Equal(25))
		})
	})

	Describe("GetOne and GetMany", func() {
		It("should find records whatever the id type", func() {
			res, err := provider.GetOne(ctx, "posts", admin.GetOneParams{ID: "4"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data["title"]).To(Equal("post 04"))
		})

		It("should report missing records", func() {
			_, err := provider.GetOne(ctx, "posts", admin.GetOneParams{ID: 99})
			Expect(errors.Is(err, admin.ErrBackendRejected)).To(BeTrue())
			Expect(errors.Is(err, memory.ErrNotFound)).To(BeTrue())
		})

		It("should return many in the order asked, skipping missing ids", func() {
			res, err := provider.GetMany(ctx, "posts", admin.GetManyParams{IDs: []admin.Identifier{5, 99, 2}})
			Expect(err).ToNot(HaveOccurred())
			Expect(admin.RecordIDs(res.Data)).To(Equal([]admin.Identifier{5, 2}))
		})

		It("should list records referencing a target", func() {
			res, err := provider.GetManyReference(ctx, "posts", admin.GetManyReferenceParams{
				Target:     "author_id",
				ID:         1,
				Pagination: admin.Pagination{Page: 1, PerPage: 100},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Total).To(Equal(12))
		})
	})

	Describe("writes", func() {
		It("should give created records a UUID", func() {
			res, err := provider.Create(ctx, "users", admin.CreateParams{Data: admin.Record{"name": "cy"}})
			Expect(err).ToNot(HaveOccurred())

			_, parseErr := uuid.Parse(res.Data.ID().(string))
			Expect(parseErr).ToNot(HaveOccurred())
			Expect(provider.Records("users")).To(HaveLen(3))
		})

		It("should use the configured id generator", func() {
			p := memory.New(map[string][]admin.Record{"users": nil},
				memory.WithIDGenerator(func() admin.Identifier { return 42 }))

			res, err := p.Create(ctx, "users", admin.CreateParams{Data: admin.Record{"name": "cy"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data.ID()).To(Equal(42))
		})

		It("should reject duplicate ids", func() {
			_, err := provider.Create(ctx, "users", admin.CreateParams{Data: admin.Record{"id": 1}})
			Expect(errors.Is(err, memory.ErrDuplicateID)).To(BeTrue())
		})

		It("should merge updates and keep the id", func() {
			res, err := provider.Update(ctx, "users", admin.UpdateParams{ID: 2, Data: admin.Record{"id": 9, "name": "bo"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(Equal(admin.Record{"id": 2, "name": "bo"}))
		})

		It("should return the deleted record", func() {
			res, err := provider.Delete(ctx, "users", admin.DeleteParams{ID: 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data["name"]).To(Equal("ann"))
			Expect(provider.Records("users")).To(HaveLen(1))
		})
	})

	Describe("batch verbs", func() {
		It("should update every id", func() {
			res, err := provider.UpdateMany(ctx, "posts", admin.UpdateManyParams{
				IDs:  []admin.Identifier{1, 2},
				Data: admin.Record{"views": 0},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Data).To(Equal([]admin.Identifier{1, 2}))

			many, _ := provider.GetMany(ctx, "posts", admin.GetManyParams{IDs: []admin.Identifier{1, 2}})
			Expect(many.Data[0]["views"]).To(Equal(0))
			Expect(many.Data[1]["views"]).To(Equal(0))
		})

		It("should change nothing when one id is missing", func() {
			_, err := provider.UpdateMany(ctx, "posts", admin.UpdateManyParams{
				IDs:  []admin.Identifier{1, 99},
				Data: admin.Record{"views": 0},
			})
			Expect(errors.Is(err, memory.ErrNotFound)).To(BeTrue())

			one, _ := provider.GetOne(ctx, "posts", admin.GetOneParams{ID: 1})
			Expect(one.Data["views"]).To(Equal(10))

			_, err = provider.DeleteMany(ctx, "posts", admin.DeleteManyParams{IDs: []admin.Identifier{1, 99}})
			Expect(err).To(HaveOccurred())
			Expect(provider.Records("posts")).To(HaveLen(25))
		})

		It("should delete every id", func() {
			_, err := provider.DeleteMany(ctx, "posts", admin.DeleteManyParams{IDs: []admin.Identifier{1, "2"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(provider.Records("posts")).To(HaveLen(23))
		})
	})

	It("should list its resources", func() {
		provider.AddResource("tags")
		Expect(provider.Resources()).To(Equal([]string{"posts", "tags", "users"}))
	})
})
