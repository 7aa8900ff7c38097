package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/friendsofgo/errors"
	"github.com/go-chi/chi/v5"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/memory"
)

// restBackend serves a memory provider with the REST conventions the
// provider speaks.
type restBackend struct {
	*httptest.Server
	store *memory.Provider

	mu       sync.Mutex
	requests []string
	headers  http.Header
	failOn   string
}

func newRestBackend(seed map[string][]admin.Record) *restBackend {
	b := &restBackend{store: memory.New(seed)}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Get("/{resource}", b.list)
	r.Post("/{resource}", b.create)
	r.Get("/{resource}/{id}", b.getOne)
	r.Put("/{resource}/{id}", b.update)
	r.Delete("/{resource}/{id}", b.delete)

	b.Server = httptest.NewServer(r)
	return b
}

func (b *restBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		line := r.Method + " " + r.URL.Path
		b.requests = append(b.requests, line)
		b.headers = r.Header.Clone()
		fail := b.failOn == line
		b.mu.Unlock()

		if fail {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *restBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.requests...)
}

func (b *restBackend) lastHeaders() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headers
}

func (b *restBackend) fail(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOn = line
}

func (b *restBackend) list(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	q := r.URL.Query()

	params := admin.ListParams{Filter: admin.Filter{}, Pagination: admin.Pagination{Page: 1, PerPage: 1000}}
	if raw := q.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Filter); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if raw := q.Get("sort"); raw != "" {
		var sort []string
		if err := json.Unmarshal([]byte(raw), &sort); err != nil || len(sort) != 2 {
			http.Error(w, "bad sort", http.StatusBadRequest)
			return
		}
		params.Sort = admin.Sort{Field: sort[0], Order: admin.Order(sort[1])}
	}
	start := 0
	if raw := q.Get("range"); raw != "" {
		var rng []int
		if err := json.Unmarshal([]byte(raw), &rng); err != nil || len(rng) != 2 {
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		start = rng[0]
		params.Pagination.PerPage = rng[1] - rng[0] + 1
		params.Pagination.Page = rng[0]/params.Pagination.PerPage + 1
	}

	res, err := b.store.GetList(r.Context(), resource, params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("%s %d-%d/%d", resource, start, start+len(res.Data)-1, res.Total))
	writeJSON(w, http.StatusOK, res.Data)
}

func (b *restBackend) getOne(w http.ResponseWriter, r *http.Request) {
	res, err := b.store.GetOne(r.Context(), chi.URLParam(r, "resource"), admin.GetOneParams{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func (b *restBackend) create(w http.ResponseWriter, r *http.Request) {
	var data admin.Record
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := b.store.Create(r.Context(), chi.URLParam(r, "resource"), admin.CreateParams{Data: data})
	if err != nil {
		writeError(w, err)
		return
	}
	// answer with the id only, like many real APIs do
	writeJSON(w, http.StatusCreated, admin.Record{"id": res.Data.ID()})
}

func (b *restBackend) update(w http.ResponseWriter, r *http.Request) {
	var data admin.Record
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := b.store.Update(r.Context(), chi.URLParam(r, "resource"), admin.UpdateParams{ID: chi.URLParam(r, "id"), Data: data})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func (b *restBackend) delete(w http.ResponseWriter, r *http.Request) {
	res, err := b.store.Delete(r.Context(), chi.URLParam(r, "resource"), admin.DeleteParams{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, memory.ErrNotFound), errors.Is(err, admin.ErrUnknownResource):
		status = http.StatusNotFound
	case errors.Is(err, memory.ErrDuplicateID):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
