package sqlboiler_test

import (
	"context"

	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/sqlboiler"
)

// These specs never reach the database: every call fails or returns before
// a statement is built, so the provider runs without a connection.
var _ = Describe("Provider without a database", func() {
	var (
		ctx      context.Context
		provider *sqlboiler.Provider
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = sqlboiler.New(nil, map[string]sqlboiler.Table{
			"posts": {Name: "posts", Columns: []string{"title"}},
		})
	})

	It("should reject unknown resources for every verb", func() {
		for _, params := range []admin.Params{
			admin.ListParams{}, admin.GetOneParams{ID: 1}, admin.GetManyParams{},
			admin.GetManyReferenceParams{}, admin.CreateParams{}, admin.UpdateParams{},
			admin.UpdateManyParams{}, admin.DeleteParams{}, admin.DeleteManyParams{},
		} {
			_, err := admin.Dispatch(ctx, provider, "ghosts", params)
			Expect(errors.Is(err, admin.ErrUnknownResource)).To(BeTrue(), params.Verb().String())
		}
	})

	It("should reject filters on unknown columns", func() {
		_, err := provider.GetList(ctx, "posts", admin.ListParams{Filter: admin.Filter{"secret": 1}})
		Expect(errors.Is(err, admin.ErrBackendRejected)).To(BeTrue())
		Expect(errors.Is(err, sqlboiler.ErrUnknownColumn)).To(BeTrue())
	})

	It("should reject sorts on unknown columns", func() {
		_, err := provider.GetList(ctx, "posts", admin.ListParams{Sort: admin.Sort{Field: "secret", Order: admin.ASC}})
		Expect(errors.Is(err, sqlboiler.ErrUnknownColumn)).To(BeTrue())
	})

	It("should reject writes to unknown columns", func() {
		_, err := provider.Create(ctx, "posts", admin.CreateParams{Data: admin.Record{"secret": 1}})
		Expect(errors.Is(err, sqlboiler.ErrUnknownColumn)).To(BeTrue())

		_, err = provider.UpdateMany(ctx, "posts", admin.UpdateManyParams{IDs: []admin.Identifier{1}, Data: admin.Record{"secret": 1}})
		Expect(errors.Is(err, sqlboiler.ErrUnknownColumn)).To(BeTrue())
	})

	It("should short-circuit empty batches", func() {
		res, err := provider.DeleteMany(ctx, "posts", admin.DeleteManyParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Data).To(BeEmpty())

		ids, err := provider.UpdateMany(ctx, "posts", admin.UpdateManyParams{Data: admin.Record{"title": "x"}})
		Expect(err).ToNot(HaveOccurred())
		Expect(ids.Data).To(BeEmpty())

		many, err := provider.GetMany(ctx, "posts", admin.GetManyParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(many.Data).To(BeEmpty())
	})
})
