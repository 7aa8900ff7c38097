package controller_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/controller"
	"github.com/nrfta/admin-go/memory"
	"github.com/nrfta/admin-go/query"
)

var _ = Describe("Controller page size limits", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
	)

	BeforeEach(func() {
		ctx = context.Background()

		rows := make([]admin.Record, 3000)
		for i := range rows {
			rows[i] = admin.Record{"id": i + 1}
		}
		provider = memory.New(map[string][]admin.Record{"posts": rows})
	})

	It("should ignore page sizes the backend would cap", func() {
		c := controller.New(provider, "posts")
		c.Load(ctx)

		snap := c.Dispatch(ctx, query.SetPerPage{PerPage: 2000})
		Expect(snap.State.PerPage).To(Equal(admin.DefaultPerPage))
		Expect(snap.PageInfo.LastPage).To(Equal(300))
	})

	It("should reach every record at the largest page size", func() {
		c := controller.New(provider, "posts")
		c.Load(ctx)
		c.Dispatch(ctx, query.SetPerPage{PerPage: admin.DefaultMaxPerPage})

		seen := map[string]bool{}
		for page := 1; page <= 5; page++ {
			snap := c.Dispatch(ctx, query.SetPage{Page: page})
			for _, r := range snap.Data {
				seen[admin.IDKey(r.ID())] = true
			}
		}

		Expect(seen).To(HaveLen(3000))
		Expect(c.Snapshot().State.Page).To(Equal(3))
	})
})
