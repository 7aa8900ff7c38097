// Package graphql implements admin.DataProvider on top of a GraphQL backend.
//
// The provider introspects the backend once, then builds one document per
// verb call from the introspected types: list queries are named
// all<Plural>, single-record queries <Type>, mutations create<Type>,
// update<Type> and delete<Type>. Overrides can replace or extend the
// operation built for any resource and verb.
//
// Batch verbs (UpdateMany, DeleteMany) are sent as a single mutation with
// one aliased field per id. The call succeeds only when every field
// succeeds; any GraphQL error fails the whole call with ErrBackendRejected.
// Whether the backend applied part of the batch before failing depends on
// the backend's mutation execution.
package graphql

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
)

// RequestHook can adjust a request before it is sent, e.g. to add headers.
type RequestHook func(resource string, verb admin.Verb, req *Request)

// Provider is a DataProvider backed by a GraphQL API.
type Provider struct {
	client       Client
	resources    map[string]string
	overrides    map[string]Override
	introOpts    IntrospectionOptions
	introspector *Introspector
	hook         RequestHook
	logger       *zap.Logger
}

var _ admin.DataProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithOverride registers an override for one resource and verb.
func WithOverride(resource string, verb admin.Verb, override Override) Option {
	return func(p *Provider) {
		p.overrides[OverrideKey(resource, verb)] = override
	}
}

// WithIntrospectionOptions sets the options used when introspecting the backend.
func WithIntrospectionOptions(opts IntrospectionOptions) Option {
	return func(p *Provider) {
		p.introOpts = opts
	}
}

// WithStaticIntrospection disables introspection and uses result instead.
func WithStaticIntrospection(result *IntrospectionResult) Option {
	return func(p *Provider) {
		p.introspector = NewStaticIntrospector(result)
	}
}

// WithRequestHook sets a hook called with every request before it is sent.
func WithRequestHook(hook RequestHook) Option {
	return func(p *Provider) {
		p.hook = hook
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

// New creates a Provider sending requests through client.
//
// resources maps resource names to backend type names, e.g.
// {"posts": "Post"}. Calls for resources missing from it fail with
// ErrUnknownResource before anything is sent.
func New(client Client, resources map[string]string, opts ...Option) *Provider {
	p := &Provider{
		client:    client,
		resources: make(map[string]string, len(resources)),
		overrides: map[string]Override{},
		logger:    zap.NewNop(),
	}
	for name, typeName := range resources {
		p.resources[name] = typeName
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.introspector == nil {
		p.introspector = NewIntrospector(func(ctx context.Context) (*IntrospectionResult, error) {
			return Introspect(ctx, p.client, p.introOpts)
		}, p.logger)
	}

	return p
}

// Introspection returns the introspection result, fetching it on first use.
func (p *Provider) Introspection(ctx context.Context) (*IntrospectionResult, error) {
	return p.introspector.Get(ctx)
}

// Invalidate drops the cached introspection result.
func (p *Provider) Invalidate() {
	p.introspector.Invalidate()
}

// Resources returns the resource to type name mapping.
func (p *Provider) Resources() map[string]string {
	out := make(map[string]string, len(p.resources))
	for k, v := range p.resources {
		out[k] = v
	}
	return out
}

// execute runs one verb call: introspection, build, hook, send, parse.
func (p *Provider) execute(ctx context.Context, verb admin.Verb, resource string, params admin.Params) (admin.Result, error) {
	if _, ok := p.resources[resource]; !ok {
		return nil, admin.UnknownResource(verb, resource)
	}

	introspection, err := p.introspector.Get(ctx)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	op, err := NewBuilder(introspection, p.resources, p.overrides).BuildQuery(verb, resource, params)
	if err != nil {
		return nil, err
	}

	req := op.Request()
	if p.hook != nil {
		p.hook(resource, verb, req)
	}

	start := time.Now()
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	p.logger.Debug("graphql request",
		zap.String("resource", resource),
		zap.Stringer("verb", verb),
		zap.String("operation", req.OperationName),
		zap.String("kind", string(op.Kind)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("errors", len(resp.Errors)),
	)

	if len(resp.Errors) > 0 {
		return nil, admin.BackendRejected(verb, resource, resp.Errors)
	}

	res, err := parse(op, resp)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}
	return res, nil
}

// parse runs the response parser, turning a panic into an error.
func parse(op *Operation, resp *Response) (res admin.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("response parser panicked: %v", r)
		}
	}()
	return op.ParseResponse(resp.Data)
}

func (p *Provider) GetList(ctx context.Context, resource string, params admin.ListParams) (*admin.ListResult, error) {
	res, err := p.execute(ctx, admin.GetList, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.ListResult](admin.GetList, resource, res)
}

func (p *Provider) GetOne(ctx context.Context, resource string, params admin.GetOneParams) (*admin.RecordResult, error) {
	res, err := p.execute(ctx, admin.GetOne, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.RecordResult](admin.GetOne, resource, res)
}

func (p *Provider) GetMany(ctx context.Context, resource string, params admin.GetManyParams) (*admin.RecordsResult, error) {
	res, err := p.execute(ctx, admin.GetMany, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.RecordsResult](admin.GetMany, resource, res)
}

func (p *Provider) GetManyReference(ctx context.Context, resource string, params admin.GetManyReferenceParams) (*admin.ListResult, error) {
	res, err := p.execute(ctx, admin.GetManyReference, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.ListResult](admin.GetManyReference, resource, res)
}

func (p *Provider) Create(ctx context.Context, resource string, params admin.CreateParams) (*admin.RecordResult, error) {
	res, err := p.execute(ctx, admin.Create, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.RecordResult](admin.Create, resource, res)
}

func (p *Provider) Update(ctx context.Context, resource string, params admin.UpdateParams) (*admin.RecordResult, error) {
	res, err := p.execute(ctx, admin.Update, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.RecordResult](admin.Update, resource, res)
}

// UpdateMany applies the same change to every id in a single mutation.
func (p *Provider) UpdateMany(ctx context.Context, resource string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	if len(params.IDs) == 0 {
		if _, ok := p.resources[resource]; !ok {
			return nil, admin.UnknownResource(admin.UpdateMany, resource)
		}
		return &admin.IDsResult{Data: []admin.Identifier{}}, nil
	}

	res, err := p.execute(ctx, admin.UpdateMany, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.IDsResult](admin.UpdateMany, resource, res)
}

func (p *Provider) Delete(ctx context.Context, resource string, params admin.DeleteParams) (*admin.RecordResult, error) {
	res, err := p.execute(ctx, admin.Delete, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.RecordResult](admin.Delete, resource, res)
}

// DeleteMany deletes every id in a single mutation.
func (p *Provider) DeleteMany(ctx context.Context, resource string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	if len(params.IDs) == 0 {
		if _, ok := p.resources[resource]; !ok {
			return nil, admin.UnknownResource(admin.DeleteMany, resource)
		}
		return &admin.IDsResult{Data: []admin.Identifier{}}, nil
	}

	res, err := p.execute(ctx, admin.DeleteMany, resource, params)
	if err != nil {
		return nil, err
	}
	return admin.ResultAs[*admin.IDsResult](admin.DeleteMany, resource, res)
}
