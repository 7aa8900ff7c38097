// Package memory implements admin.DataProvider over records held in memory.
//
// It is the reference adapter: the controller and CLI tests run against it
// and it is handy as a fixture backend. Batch verbs are all-or-nothing: every
// id is checked before anything changes.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/offset"
)

// ErrNotFound is the cause of BackendRejected errors for missing records.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateID is the cause of BackendRejected errors for creates that
// reuse an existing id.
var ErrDuplicateID = errors.New("duplicate id")

// Provider is an in-memory DataProvider. It is safe for concurrent use.
type Provider struct {
	mu        sync.RWMutex
	resources map[string][]admin.Record

	config *admin.ListConfig
	newID  func() admin.Identifier
	logger *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithListConfig sets the page size defaults applied to list calls.
func WithListConfig(cfg *admin.ListConfig) Option {
	return func(p *Provider) {
		if cfg != nil {
			p.config = cfg
		}
	}
}

// WithIDGenerator replaces the random UUID ids given to created records.
func WithIDGenerator(fn func() admin.Identifier) Option {
	return func(p *Provider) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a provider serving the given resources. The seed is copied.
func New(seed map[string][]admin.Record, opts ...Option) *Provider {
	p := &Provider{
		resources: make(map[string][]admin.Record, len(seed)),
		config:    admin.NewListConfig(),
		newID:     func() admin.Identifier { return uuid.NewString() },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for resource, records := range seed {
		p.resources[resource] = admin.CloneRecords(records)
		if p.resources[resource] == nil {
			p.resources[resource] = []admin.Record{}
		}
	}
	return p
}

// AddResource registers resource, replacing any records it held.
func (p *Provider) AddResource(resource string, records ...admin.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources[resource] = append([]admin.Record{}, admin.CloneRecords(records)...)
}

// Records returns a copy of every record of resource in insertion order.
func (p *Provider) Records(resource string) []admin.Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return admin.CloneRecords(p.resources[resource])
}

// Resources returns the served resource names, sorted.
func (p *Provider) Resources() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := lo.Keys(p.resources)
	slices.Sort(names)
	return names
}

func (p *Provider) GetList(_ context.Context, resource string, params admin.ListParams) (*admin.ListResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.GetList, resource)
	}
	return p.page(records, params.Pagination, params.Sort, params.Filter), nil
}

func (p *Provider) GetOne(_ context.Context, resource string, params admin.GetOneParams) (*admin.RecordResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.GetOne, resource)
	}

	i := indexOf(records, params.ID)
	if i < 0 {
		return nil, notFound(admin.GetOne, resource, params.ID)
	}
	return &admin.RecordResult{Data: records[i].Clone()}, nil
}

// GetMany returns the existing records among params.IDs in the order asked.
// Missing ids are skipped.
func (p *Provider) GetMany(_ context.Context, resource string, params admin.GetManyParams) (*admin.RecordsResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.GetMany, resource)
	}

	out := []admin.Record{}
	for _, id := range params.IDs {
		if i := indexOf(records, id); i >= 0 {
			out = append(out, records[i].Clone())
		}
	}
	return &admin.RecordsResult{Data: out}, nil
}

func (p *Provider) GetManyReference(_ context.Context, resource string, params admin.GetManyReferenceParams) (*admin.ListResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.GetManyReference, resource)
	}
	if params.Target == "" {
		return nil, admin.BackendRejected(admin.GetManyReference, resource, errors.New("missing target"))
	}

	filter := params.Filter.Clone()
	filter[params.Target] = params.ID
	return p.page(records, params.Pagination, params.Sort, filter), nil
}

func (p *Provider) Create(_ context.Context, resource string, params admin.CreateParams) (*admin.RecordResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.Create, resource)
	}

	record := params.Data.Clone()
	if record == nil {
		record = admin.Record{}
	}
	if record.ID() == nil {
		record[admin.IDField] = p.newID()
	} else if indexOf(records, record.ID()) >= 0 {
		return nil, admin.BackendRejected(admin.Create, resource, errors.Wrapf(ErrDuplicateID, "id %v", record.ID()))
	}

	p.resources[resource] = append(records, record)
	p.logger.Debug("created record", zap.String("resource", resource), zap.Any("id", record.ID()))
	return &admin.RecordResult{Data: record.Clone()}, nil
}

func (p *Provider) Update(_ context.Context, resource string, params admin.UpdateParams) (*admin.RecordResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.Update, resource)
	}

	i := indexOf(records, params.ID)
	if i < 0 {
		return nil, notFound(admin.Update, resource, params.ID)
	}

	records[i] = apply(records[i], params.Data)
	return &admin.RecordResult{Data: records[i].Clone()}, nil
}

// UpdateMany updates every id or none.
func (p *Provider) UpdateMany(_ context.Context, resource string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.UpdateMany, resource)
	}

	indexes, err := indexesOf(admin.UpdateMany, resource, records, params.IDs)
	if err != nil {
		return nil, err
	}
	for _, i := range indexes {
		records[i] = apply(records[i], params.Data)
	}
	return &admin.IDsResult{Data: append([]admin.Identifier{}, params.IDs...)}, nil
}

func (p *Provider) Delete(_ context.Context, resource string, params admin.DeleteParams) (*admin.RecordResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.Delete, resource)
	}

	i := indexOf(records, params.ID)
	if i < 0 {
		return nil, notFound(admin.Delete, resource, params.ID)
	}

	deleted := records[i]
	p.resources[resource] = slices.Delete(records, i, i+1)
	return &admin.RecordResult{Data: deleted.Clone()}, nil
}

// DeleteMany deletes every id or none.
func (p *Provider) DeleteMany(_ context.Context, resource string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, ok := p.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(admin.DeleteMany, resource)
	}

	if _, err := indexesOf(admin.DeleteMany, resource, records, params.IDs); err != nil {
		return nil, err
	}
	p.resources[resource] = lo.Reject(records, func(r admin.Record, _ int) bool {
		return admin.ContainsID(params.IDs, r.ID())
	})
	return &admin.IDsResult{Data: append([]admin.Identifier{}, params.IDs...)}, nil
}

// page filters, sorts and paginates records.
func (p *Provider) page(records []admin.Record, page admin.Pagination, sort admin.Sort, filter admin.Filter) *admin.ListResult {
	matched := lo.Filter(records, func(r admin.Record, _ int) bool {
		return Matches(r, filter)
	})

	if sort.Field != "" {
		desc := sort.Order == admin.DESC
		slices.SortStableFunc(matched, func(a, b admin.Record) int {
			c := Compare(a[sort.Field], b[sort.Field])
			if desc {
				return -c
			}
			return c
		})
	}

	paginator := offset.New(page, sort, int64(len(matched)), offset.WithConfig(p.config))
	return &admin.ListResult{
		Data:  admin.CloneRecords(offset.Window(paginator, matched)),
		Total: len(matched),
	}
}

// apply merges data into record, keeping its id.
func apply(record, data admin.Record) admin.Record {
	id := record.ID()
	merged := record.Merge(data)
	merged[admin.IDField] = id
	return merged
}

func indexOf(records []admin.Record, id admin.Identifier) int {
	return slices.IndexFunc(records, func(r admin.Record) bool {
		return admin.SameID(r.ID(), id)
	})
}

func indexesOf(verb admin.Verb, resource string, records []admin.Record, ids []admin.Identifier) ([]int, error) {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		i := indexOf(records, id)
		if i < 0 {
			return nil, notFound(verb, resource, id)
		}
		out = append(out, i)
	}
	return out, nil
}

func notFound(verb admin.Verb, resource string, id admin.Identifier) error {
	return admin.BackendRejected(verb, resource, errors.Wrapf(ErrNotFound, "id %v", id))
}

var _ admin.DataProvider = (*Provider)(nil)
