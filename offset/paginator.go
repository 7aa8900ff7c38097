// Package offset translates page-based list requests into offset/limit
// windows.
//
// Every adapter that talks to an offset-addressed backend (SQL, the simple
// REST protocol, in-memory slices) goes through a Paginator so the page
// arithmetic is the same everywhere. It is designed to work with SQLBoiler
// query mods.
//
// Example usage:
//
//	paginator := offset.New(params.Pagination, params.Sort, totalCount)
//	mods := paginator.QueryMods()
//	rows, err := queries.Raw(...) // or models.Posts(mods...).All(ctx, db)
package offset

import (
	"fmt"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"

	"github.com/nrfta/admin-go"
)

// Paginator is the paginator for offset-based pagination.
// It encapsulates limit, offset, and page metadata for database queries.
type Paginator struct {
	Limit    int
	Offset   int
	PageInfo admin.PageInfo

	// OrderBy is the quoted ORDER BY clause, e.g. `"title" DESC`.
	// Empty when neither the sort nor the config names a field.
	OrderBy string
}

// Option configures a Paginator.
type Option func(*options)

type options struct {
	config *admin.ListConfig
	lq, rq rune
}

// WithConfig applies the page size defaults and caps of config.
func WithConfig(config *admin.ListConfig) Option {
	return func(o *options) {
		if config != nil {
			o.config = config
		}
	}
}

// WithIdentQuotes sets the identifier quote characters used in ORDER BY.
// Defaults to PostgreSQL double quotes.
func WithIdentQuotes(lq, rq rune) Option {
	return func(o *options) {
		o.lq, o.rq = lq, rq
	}
}

// New creates a new offset paginator.
//
// Parameters:
//   - page: requested page and page size
//   - sort: sort directive, quoted into the ORDER BY clause
//   - totalCount: Total number of records available
//
// The paginator automatically handles:
//   - Default and maximum page size from the ListConfig
//   - Pages below 1, which are treated as page 1
//   - Sorting by the configured default when no field is given
func New(page admin.Pagination, sort admin.Sort, totalCount int64, opts ...Option) Paginator {
	o := &options{config: admin.NewListConfig(), lq: '"', rq: '"'}
	for _, opt := range opts {
		opt(o)
	}

	limit := o.config.EffectivePerPage(page.PerPage)

	current := page.Page
	if current < 1 {
		current = 1
	}

	if sort.Field == "" {
		sort = o.config.DefaultSort
	}
	if !sort.Order.Valid() {
		sort.Order = admin.ASC
	}

	var orderBy string
	if sort.Field != "" {
		orderBy = fmt.Sprintf("%s %s", strmangle.IdentQuote(o.lq, o.rq, sort.Field), sort.Order)
	}

	return Paginator{
		Limit:    limit,
		Offset:   (current - 1) * limit,
		PageInfo: admin.NewPageInfo(admin.Pagination{Page: current, PerPage: limit}, int(totalCount)),
		OrderBy:  orderBy,
	}
}

// QueryMods returns SQLBoiler query modifiers for pagination.
// These mods apply offset, limit, and order by clauses to a query.
//
// Example usage:
//
//	items, err := models.Items(paginator.QueryMods()...).All(ctx, db)
func (p *Paginator) QueryMods() []qm.QueryMod {
	mods := []qm.QueryMod{
		qm.Offset(p.Offset),
		qm.Limit(p.Limit),
	}
	if p.OrderBy != "" {
		mods = append(mods, qm.OrderBy(p.OrderBy))
	}
	return mods
}

// Range returns the inclusive index range of the page, as used by
// range=[start,end] style APIs.
func (p *Paginator) Range() (start, end int) {
	return p.Offset, p.Offset + p.Limit - 1
}

// Window returns the part of items covered by the paginator.
// items is expected to hold the full, already sorted result set.
func Window[T any](p Paginator, items []T) []T {
	if p.Offset >= len(items) {
		return []T{}
	}

	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
