package query_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/query"
)

var _ = Describe("Store", func() {
	var store *query.Store

	BeforeEach(func() {
		store = query.NewStore(nil)
	})

	It("should ignore intents for unregistered resources", func() {
		_, ok := store.Apply("posts", query.SetPage{Page: 2})
		Expect(ok).To(BeFalse())

		_, ok = store.Get("posts")
		Expect(ok).To(BeFalse())
	})

	It("should keep resources isolated", func() {
		store.Register("posts")
		store.Register("comments")

		_, ok := store.Apply("posts", query.SetPage{Page: 3})
		Expect(ok).To(BeTrue())

		posts, _ := store.Get("posts")
		comments, _ := store.Get("comments")
		Expect(posts.Page).To(Equal(3))
		Expect(comments.Page).To(Equal(1))
		Expect(store.Resources()).To(Equal([]string{"comments", "posts"}))
	})

	It("should keep the existing state when registering twice", func() {
		store.Register("posts")
		store.Apply("posts", query.SetPage{Page: 2})

		state := store.Register("posts")
		Expect(state.Page).To(Equal(2))
	})

	It("should use the given initial state", func() {
		initial := query.NewState(nil)
		initial.Filter = admin.Filter{"status": "draft"}

		state := store.Register("posts", initial)
		Expect(state.Filter).To(Equal(admin.Filter{"status": "draft"}))
	})

	Describe("page size limits", func() {
		BeforeEach(func() {
			store = query.NewStore(admin.NewListConfig().WithMaxPerPage(1000))
			store.Register("posts")
		})

		It("should ignore page sizes above the maximum", func() {
			state, ok := store.Apply("posts", query.SetPerPage{PerPage: 2000})
			Expect(ok).To(BeTrue())
			Expect(state.PerPage).To(Equal(10))

			state, _ = store.Apply("posts", query.SetPerPage{PerPage: 1000})
			Expect(state.PerPage).To(Equal(1000))
		})

		It("should cap oversized initial states", func() {
			initial := query.NewState(nil)
			initial.PerPage = 2000
			initial.Page = 0

			state := store.Register("comments", initial)
			Expect(state.PerPage).To(Equal(1000))
			Expect(state.Page).To(Equal(1))

			initial.PerPage = 5000
			Expect(store.Replace("comments", initial)).To(BeTrue())
			state, _ = store.Get("comments")
			Expect(state.PerPage).To(Equal(1000))
		})
	})

	It("should forget unregistered resources", func() {
		store.Register("posts")
		store.Unregister("posts")

		_, ok := store.Get("posts")
		Expect(ok).To(BeFalse())
		Expect(store.Replace("posts", query.NewState(nil))).To(BeFalse())
	})

	It("should not leak internal state", func() {
		store.Register("posts")
		state, _ := store.Apply("posts", query.SetFilter{Filter: admin.Filter{"a": 1}})
		state.Filter["a"] = 2

		stored, _ := store.Get("posts")
		Expect(stored.Filter["a"]).To(Equal(1))
	})

	It("should be safe for concurrent use", func() {
		store.Register("posts")

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				store.Apply("posts", query.ToggleSelection{ID: id})
			}(i)
		}
		wg.Wait()

		state, _ := store.Get("posts")
		Expect(state.SelectedIDs).To(HaveLen(50))
	})
})
