// Package controller drives a single admin list: it turns intents into
// query state through the query package, fetches pages from a DataProvider
// and keeps the last good page around when a fetch fails.
//
// Fetches are ordered by issue time. A response that arrives after a newer
// fetch was issued is dropped, whatever order the responses arrive in.
//
// Example usage:
//
//	list := controller.New(provider, "posts", controller.WithLogger(logger))
//	snap := list.Load(ctx)
//	snap = list.Dispatch(ctx, query.SetPage{Page: 2})
package controller

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/query"
)

// Controller is the list controller of one resource.
// It is safe for concurrent use.
type Controller struct {
	provider admin.DataProvider
	resource string

	store           *query.Store
	ownsStore       bool
	config          *admin.ListConfig
	initial         *query.State
	notifier        Notifier
	logger          *zap.Logger
	optimistic      bool
	permanentFilter admin.Filter

	mu      sync.Mutex
	seq     uint64
	applied uint64
	fetched *query.State
	status  Status
	data    []admin.Record
	total   int
	err     error
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore shares a query store between controllers.
func WithStore(store *query.Store) Option {
	return func(c *Controller) {
		if store != nil {
			c.store = store
			c.ownsStore = false
		}
	}
}

// WithNotifier sets the collaborator that receives success and error messages.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger of the controller and, unless WithNotifier is
// given, of its default notifier.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfig sets the page size limits and default sort of the list.
func WithConfig(cfg *admin.ListConfig) Option {
	return func(c *Controller) {
		if cfg != nil {
			c.config = cfg
		}
	}
}

// WithInitialState sets the state the resource is registered with.
// It has no effect when the resource is already registered in a shared store.
func WithInitialState(state query.State) Option {
	return func(c *Controller) {
		s := state.Clone()
		c.initial = &s
	}
}

// WithOptimisticMutations applies bulk updates and deletes to the current
// page before the backend confirms them.
func WithOptimisticMutations() Option {
	return func(c *Controller) {
		c.optimistic = true
	}
}

// WithPermanentFilter adds filter to every fetch. It is never stored in the
// query state and wins over user filters on the same key.
func WithPermanentFilter(filter admin.Filter) Option {
	return func(c *Controller) {
		c.permanentFilter = filter.Clone()
	}
}

// New creates a controller for resource and registers it in the store.
func New(provider admin.DataProvider, resource string, opts ...Option) *Controller {
	c := &Controller{
		provider:  provider,
		resource:  resource,
		ownsStore: true,
		logger:    zap.NewNop(),
		status:    Idle,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.config == nil {
		c.config = admin.NewListConfig()
	}
	if c.store == nil {
		c.store = query.NewStore(c.config)
	}
	if c.notifier == nil {
		c.notifier = NewLogNotifier(c.logger)
	}
	c.logger = c.logger.With(zap.String("resource", resource))

	if c.initial != nil {
		c.store.Register(resource, *c.initial)
	} else {
		c.store.Register(resource)
	}

	return c
}

// Load fetches the current page, whether or not it was fetched before.
func (c *Controller) Load(ctx context.Context) Snapshot {
	return c.issue(ctx, func() (query.State, bool) {
		return c.store.Get(c.resource)
	})
}

// Refresh is Load under the name the list views use.
func (c *Controller) Refresh(ctx context.Context) Snapshot {
	return c.Load(ctx)
}

// Dispatch applies intent and fetches when the query changed since the last
// issued fetch, or when the last fetch failed. Selection intents on a loaded
// list never fetch.
func (c *Controller) Dispatch(ctx context.Context, intent query.Intent) Snapshot {
	return c.issue(ctx, func() (query.State, bool) {
		state, ok := c.store.Apply(c.resource, intent)
		if !ok {
			return state, false
		}
		return state, c.fetched == nil || !c.fetched.SameQuery(state)
	})
}

// Snapshot returns the current view of the list.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close unregisters the resource from the store when the controller owns
// it. Later calls are no-ops; in-flight responses are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.seq++
	c.mu.Unlock()

	if c.ownsStore {
		c.store.Unregister(c.resource)
	}
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) snapshotLocked() Snapshot {
	state, ok := c.store.Get(c.resource)
	if !ok {
		state = query.NewState(c.config)
	}

	info := admin.NewEmptyPageInfo()
	if c.status != Idle {
		info = admin.NewPageInfo(state.Pagination(), c.total)
	}

	return Snapshot{
		Status:   c.status,
		State:    state,
		Data:     admin.CloneRecords(c.data),
		Total:    c.total,
		PageInfo: info,
		Err:      c.err,
	}
}

// params builds the GetList params of state with the permanent filter on top.
func (c *Controller) params(state query.State) admin.ListParams {
	params := state.ListParams()
	for k, v := range c.permanentFilter {
		params.Filter[k] = v
	}
	return params
}

// issue runs next under the controller lock and, when next reports a state
// to fetch, issues that fetch in the same critical section. Two concurrent
// intents are therefore fetched in the order they were applied to the store.
func (c *Controller) issue(ctx context.Context, next func() (query.State, bool)) Snapshot {
	c.mu.Lock()
	if c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}

	state, ok := next()
	if !ok {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	seq := c.issueLocked(state)
	c.mu.Unlock()

	return c.fetch(ctx, seq, state)
}

func (c *Controller) issueLocked(state query.State) uint64 {
	c.seq++
	issued := state.Clone()
	c.fetched = &issued
	c.status = Loading
	return c.seq
}

func (c *Controller) fetch(ctx context.Context, seq uint64, state query.State) Snapshot {
	res, err := c.provider.GetList(ctx, c.resource, c.params(state))

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded response",
			zap.Uint64("seq", seq), zap.Int("page", state.Page))
		return c.Snapshot()
	}

	if err != nil {
		c.status = Errored
		c.err = err
		// Nothing was fetched, so the next intent must fetch again.
		c.fetched = nil
		c.mu.Unlock()

		c.notifier.Notify(ctx, Notification{
			Level:    LevelError,
			Resource: c.resource,
			Message:  err.Error(),
			Err:      err,
		})
		return c.Snapshot()
	}

	c.data = admin.CloneRecords(res.Data)
	c.total = res.Total
	c.applied = seq
	c.err = nil
	c.status = Ready

	target := admin.ClampPage(state.Page, state.PerPage, res.Total)
	if target == state.Page {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}

	clamped, ok := c.store.Apply(c.resource, query.SetPage{Page: target})
	if !ok {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	next := c.issueLocked(clamped)
	c.mu.Unlock()

	c.logger.Debug("page out of range, clamping",
		zap.Int("page", state.Page), zap.Int("last_page", target))
	return c.fetch(ctx, next, clamped)
}

// UpdateMany applies data to every selected record.
func (c *Controller) UpdateMany(ctx context.Context, data admin.Record) Snapshot {
	return c.mutate(ctx, admin.UpdateMany, func(ids []admin.Identifier) error {
		_, err := c.provider.UpdateMany(ctx, c.resource, admin.UpdateManyParams{IDs: ids, Data: data})
		return err
	}, func(records []admin.Record, ids []admin.Identifier) ([]admin.Record, int) {
		out := make([]admin.Record, len(records))
		for i, r := range records {
			if admin.ContainsID(ids, r.ID()) {
				r = r.Merge(data)
			}
			out[i] = r
		}
		return out, 0
	})
}

// DeleteMany deletes every selected record.
func (c *Controller) DeleteMany(ctx context.Context) Snapshot {
	return c.mutate(ctx, admin.DeleteMany, func(ids []admin.Identifier) error {
		_, err := c.provider.DeleteMany(ctx, c.resource, admin.DeleteManyParams{IDs: ids})
		return err
	}, func(records []admin.Record, ids []admin.Identifier) ([]admin.Record, int) {
		out := make([]admin.Record, 0, len(records))
		for _, r := range records {
			if !admin.ContainsID(ids, r.ID()) {
				out = append(out, r)
			}
		}
		return out, len(records) - len(out)
	})
}

// localEdit applies a bulk mutation to the current page. It returns the new
// page and how many records left it.
type localEdit func(records []admin.Record, ids []admin.Identifier) ([]admin.Record, int)

func (c *Controller) mutate(ctx context.Context, verb admin.Verb, call func([]admin.Identifier) error, edit localEdit) Snapshot {
	if c.isClosed() {
		return c.Snapshot()
	}

	state, ok := c.store.Get(c.resource)
	if !ok || len(state.SelectedIDs) == 0 {
		return c.Snapshot()
	}
	ids := state.SelectedIDs

	var (
		prior      []admin.Record
		priorTotal int
		appliedAt  uint64
	)
	if c.optimistic {
		c.mu.Lock()
		prior = admin.CloneRecords(c.data)
		priorTotal = c.total
		appliedAt = c.applied
		next, removed := edit(admin.CloneRecords(c.data), ids)
		c.data = next
		c.total -= removed
		c.mu.Unlock()
	}

	if err := call(ids); err != nil {
		return c.mutationFailed(ctx, err, prior, priorTotal, appliedAt)
	}

	c.notifier.Notify(ctx, Notification{
		Level:    LevelInfo,
		Resource: c.resource,
		Message:  mutationMessage(verb, c.resource, len(ids)),
	})

	return c.issue(ctx, func() (query.State, bool) {
		return c.store.Apply(c.resource, query.ClearSelection{})
	})
}

// mutationFailed records err and undoes an optimistic edit. The exact prior
// page is restored when no list response landed in between; otherwise the
// page is fetched again, which costs a round trip.
func (c *Controller) mutationFailed(ctx context.Context, err error, prior []admin.Record, priorTotal int, appliedAt uint64) Snapshot {
	refetch := false

	c.mu.Lock()
	c.status = Errored
	c.err = err
	if c.optimistic {
		if c.applied == appliedAt {
			c.data = prior
			c.total = priorTotal
			c.logger.Debug("rolled back optimistic mutation")
		} else {
			refetch = true
		}
	}
	c.mu.Unlock()

	c.notifier.Notify(ctx, Notification{
		Level:    LevelError,
		Resource: c.resource,
		Message:  err.Error(),
		Err:      err,
	})

	if refetch {
		c.logger.Debug("newer page landed during mutation, refetching")
		snap := c.Load(ctx)
		if snap.Err == nil {
			c.mu.Lock()
			c.status = Errored
			c.err = err
			snap = c.snapshotLocked()
			c.mu.Unlock()
		}
		return snap
	}
	return c.Snapshot()
}

func mutationMessage(verb admin.Verb, resource string, n int) string {
	action := "updated"
	if verb == admin.DeleteMany {
		action = "deleted"
	}
	return fmt.Sprintf("%d %s %s", n, resource, action)
}
