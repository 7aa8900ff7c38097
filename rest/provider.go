// Package rest implements admin.DataProvider over a plain JSON REST API.
//
// The API is expected to follow these conventions:
//
//	getList     GET    /posts?sort=["title","ASC"]&range=[0,24]&filter={"title":"bar"}
//	getOne      GET    /posts/123
//	getMany     GET    /posts?filter={"id":[123,456,789]}
//	getManyRef  GET    /posts?filter={"author_id":345}
//	create      POST   /posts
//	update      PUT    /posts/123
//	updateMany  PUT    /posts/123, PUT /posts/456, ...
//	delete      DELETE /posts/123
//	deleteMany  DELETE /posts/123, DELETE /posts/456, ...
//
// List totals are read from the Content-Range header (posts 0-24/319), or
// from the header configured with WithTotalHeader.
//
// Batch verbs call the single record endpoint once per id, in order, and
// fail the whole call on the first failure. Records changed before the
// failure stay changed.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/internal/transport"
	"github.com/nrfta/admin-go/offset"
)

// ContentRange is the default header carrying list totals.
const ContentRange = "Content-Range"

// StatusError is the cause of BackendRejected errors for non 2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Provider is a DataProvider for REST APIs.
type Provider struct {
	baseURL     string
	http        *http.Client
	config      *transport.Config
	totalHeader string
	resources   map[string]bool
	listConfig  *admin.ListConfig
	logger      *zap.Logger
}

type options struct {
	transport   *transport.Config
	totalHeader string
	resources   []string
	listConfig  *admin.ListConfig
	logger      *zap.Logger
}

// Option configures a Provider.
type Option func(*options)

// WithHTTPClient uses c as is; retry options are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.transport.HTTPClient = c
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.transport.Header.Add(key, value)
	}
}

// WithTimeout sets the timeout of a whole request, retries included.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.transport.Timeout = d
	}
}

// WithRetry configures retries on connection errors, 429 and 5xx responses.
func WithRetry(attempts int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.transport.RetryMax = attempts
		o.transport.RetryWaitMin = waitMin
		o.transport.RetryWaitMax = waitMax
	}
}

// WithTotalHeader reads list totals from a header holding a plain number,
// such as X-Total-Count, instead of Content-Range.
func WithTotalHeader(name string) Option {
	return func(o *options) {
		o.totalHeader = name
	}
}

// WithResources restricts the provider to the named resources. Calls for
// other resources fail with ErrUnknownResource without a request.
func WithResources(names ...string) Option {
	return func(o *options) {
		o.resources = append(o.resources, names...)
	}
}

// WithListConfig sets the page size defaults of list calls.
func WithListConfig(cfg *admin.ListConfig) Option {
	return func(o *options) {
		if cfg != nil {
			o.listConfig = cfg
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a provider for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Provider {
	o := &options{
		transport:   transport.DefaultConfig(),
		totalHeader: ContentRange,
		listConfig:  admin.NewListConfig(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	var resources map[string]bool
	if len(o.resources) > 0 {
		resources = lo.SliceToMap(o.resources, func(name string) (string, bool) {
			return name, true
		})
	}

	return &Provider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        o.transport.Client(),
		config:      o.transport,
		totalHeader: o.totalHeader,
		resources:   resources,
		listConfig:  o.listConfig,
		logger:      o.logger,
	}
}

func (p *Provider) GetList(ctx context.Context, resource string, params admin.ListParams) (*admin.ListResult, error) {
	if err := p.check(admin.GetList, resource); err != nil {
		return nil, err
	}
	return p.list(ctx, admin.GetList, resource, params.Pagination, params.Sort, params.Filter)
}

func (p *Provider) GetOne(ctx context.Context, resource string, params admin.GetOneParams) (*admin.RecordResult, error) {
	if err := p.check(admin.GetOne, resource); err != nil {
		return nil, err
	}

	var record admin.Record
	if _, err := p.do(ctx, admin.GetOne, resource, http.MethodGet, p.recordURL(resource, params.ID), nil, &record); err != nil {
		return nil, err
	}
	return &admin.RecordResult{Data: record}, nil
}

func (p *Provider) GetMany(ctx context.Context, resource string, params admin.GetManyParams) (*admin.RecordsResult, error) {
	if err := p.check(admin.GetMany, resource); err != nil {
		return nil, err
	}

	query, err := encodeQuery(admin.Filter{admin.IDField: params.IDs}, nil, nil)
	if err != nil {
		return nil, admin.BackendRejected(admin.GetMany, resource, err)
	}

	var records []admin.Record
	if _, err := p.do(ctx, admin.GetMany, resource, http.MethodGet, p.listURL(resource, query), nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []admin.Record{}
	}
	return &admin.RecordsResult{Data: records}, nil
}

func (p *Provider) GetManyReference(ctx context.Context, resource string, params admin.GetManyReferenceParams) (*admin.ListResult, error) {
	if err := p.check(admin.GetManyReference, resource); err != nil {
		return nil, err
	}

	filter := params.Filter.Clone()
	filter[params.Target] = params.ID
	return p.list(ctx, admin.GetManyReference, resource, params.Pagination, params.Sort, filter)
}

// Create posts the record. The response fields are merged over the sent
// data, so APIs answering with just the new id are supported.
func (p *Provider) Create(ctx context.Context, resource string, params admin.CreateParams) (*admin.RecordResult, error) {
	if err := p.check(admin.Create, resource); err != nil {
		return nil, err
	}

	var created admin.Record
	if _, err := p.do(ctx, admin.Create, resource, http.MethodPost, p.listURL(resource, nil), params.Data, &created); err != nil {
		return nil, err
	}
	return &admin.RecordResult{Data: params.Data.Merge(created)}, nil
}

func (p *Provider) Update(ctx context.Context, resource string, params admin.UpdateParams) (*admin.RecordResult, error) {
	if err := p.check(admin.Update, resource); err != nil {
		return nil, err
	}

	record, err := p.update(ctx, admin.Update, resource, params.ID, params.Data)
	if err != nil {
		return nil, err
	}
	return &admin.RecordResult{Data: record}, nil
}

func (p *Provider) UpdateMany(ctx context.Context, resource string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	if err := p.check(admin.UpdateMany, resource); err != nil {
		return nil, err
	}

	ids := make([]admin.Identifier, 0, len(params.IDs))
	for _, id := range params.IDs {
		record, err := p.update(ctx, admin.UpdateMany, resource, id, params.Data)
		if err != nil {
			return nil, err
		}
		ids = append(ids, lo.Ternary(record.ID() != nil, record.ID(), id))
	}
	return &admin.IDsResult{Data: ids}, nil
}

func (p *Provider) Delete(ctx context.Context, resource string, params admin.DeleteParams) (*admin.RecordResult, error) {
	if err := p.check(admin.Delete, resource); err != nil {
		return nil, err
	}

	record, err := p.delete(ctx, admin.Delete, resource, params.ID)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		record = params.PreviousData.Merge(admin.Record{admin.IDField: params.ID})
	}
	return &admin.RecordResult{Data: record}, nil
}

func (p *Provider) DeleteMany(ctx context.Context, resource string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	if err := p.check(admin.DeleteMany, resource); err != nil {
		return nil, err
	}

	for _, id := range params.IDs {
		if _, err := p.delete(ctx, admin.DeleteMany, resource, id); err != nil {
			return nil, err
		}
	}
	return &admin.IDsResult{Data: append([]admin.Identifier{}, params.IDs...)}, nil
}

func (p *Provider) check(verb admin.Verb, resource string) error {
	if resource == "" || (p.resources != nil && !p.resources[resource]) {
		return admin.UnknownResource(verb, resource)
	}
	return nil
}

func (p *Provider) list(ctx context.Context, verb admin.Verb, resource string, page admin.Pagination, sort admin.Sort, filter admin.Filter) (*admin.ListResult, error) {
	paginator := offset.New(page, sort, 0, offset.WithConfig(p.listConfig))
	start, end := paginator.Range()

	var sortParam []string
	if sort.Field != "" {
		sortParam = []string{sort.Field, string(lo.Ternary(sort.Order.Valid(), sort.Order, admin.ASC))}
	}

	query, err := encodeQuery(filter, sortParam, []int{start, end})
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	var records []admin.Record
	header, err := p.do(ctx, verb, resource, http.MethodGet, p.listURL(resource, query), nil, &records)
	if err != nil {
		return nil, err
	}

	total, err := parseTotal(header.Get(p.totalHeader), p.totalHeader)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	return admin.BuildListResult(records, total, func(r admin.Record) (admin.Record, error) {
		return r, nil
	})
}

func (p *Provider) update(ctx context.Context, verb admin.Verb, resource string, id admin.Identifier, data admin.Record) (admin.Record, error) {
	var record admin.Record
	if _, err := p.do(ctx, verb, resource, http.MethodPut, p.recordURL(resource, id), data, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Provider) delete(ctx context.Context, verb admin.Verb, resource string, id admin.Identifier) (admin.Record, error) {
	var record admin.Record
	if _, err := p.do(ctx, verb, resource, http.MethodDelete, p.recordURL(resource, id), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Provider) listURL(resource string, query url.Values) string {
	u := p.baseURL + "/" + url.PathEscape(resource)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (p *Provider) recordURL(resource string, id admin.Identifier) string {
	return p.listURL(resource, nil) + "/" + url.PathEscape(admin.IDKey(id))
}

// do sends one request and decodes a JSON body into out. Empty bodies leave
// out untouched.
func (p *Provider) do(ctx context.Context, verb admin.Verb, resource, method, target string, body any, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, admin.BackendRejected(verb, resource, errors.Wrap(err, "encode request"))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, errors.Wrap(err, "create request"))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	p.config.ApplyHeaders(req, nil)

	start := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, errors.Wrap(err, "send request"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, errors.Wrap(err, "read response"))
	}

	p.logger.Debug("rest request",
		zap.String("resource", resource),
		zap.Stringer("verb", verb),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, admin.BackendRejected(verb, resource, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		})
	}

	if len(bytes.TrimSpace(raw)) > 0 && out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, admin.BackendRejected(verb, resource, errors.Wrap(err, "decode response"))
		}
	}
	return resp.Header, nil
}

// encodeQuery builds the sort, range and filter query parameters.
// Each value is JSON encoded.
func encodeQuery(filter admin.Filter, sort []string, rng []int) (url.Values, error) {
	query := url.Values{}

	add := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "encode %s", key)
		}
		query.Set(key, string(raw))
		return nil
	}

	if sort != nil {
		if err := add("sort", sort); err != nil {
			return nil, err
		}
	}
	if rng != nil {
		if err := add("range", rng); err != nil {
			return nil, err
		}
	}
	if filter == nil {
		filter = admin.Filter{}
	}
	if err := add("filter", filter); err != nil {
		return nil, err
	}
	return query, nil
}

// parseTotal reads "posts 0-24/319" style Content-Range values, or a plain
// number for any other header.
func parseTotal(value, header string) (int, error) {
	if value == "" {
		return 0, errors.Errorf("missing %s header", header)
	}

	if strings.EqualFold(header, ContentRange) {
		_, after, ok := strings.Cut(value, "/")
		if !ok {
			return 0, errors.Errorf("malformed %s header %q", header, value)
		}
		value = after
	}

	total, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "malformed %s header %q", header, value)
	}
	return total, nil
}

var _ admin.DataProvider = (*Provider)(nil)
