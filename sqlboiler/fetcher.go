// Package sqlboiler implements admin.DataProvider over a SQL database using
// SQLBoiler query mods.
//
// Reads are built from qm.QueryMod values so the same filter and pagination
// code works for the dynamic Provider and for generated models:
//
//	fetcher := sqlboiler.NewFetcher(
//	    func(ctx context.Context, mods ...qm.QueryMod) ([]*models.User, error) {
//	        return models.Users(mods...).All(ctx, db)
//	    },
//	    func(ctx context.Context, mods ...qm.QueryMod) (int64, error) {
//	        return models.Users(mods...).Count(ctx, db)
//	    },
//	)
//	res, err := fetcher.List(ctx, params.Pagination, params.Sort, where, toRecord)
//
// Writes use raw statements with RETURNING and target PostgreSQL.
package sqlboiler

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/offset"
)

// QueryFunc executes a SQLBoiler query and returns results.
//
// Type parameter T is the row type (e.g., *models.User or admin.Record).
type QueryFunc[T any] func(ctx context.Context, mods ...qm.QueryMod) ([]T, error)

// CountFunc executes a SQLBoiler count query.
type CountFunc func(ctx context.Context, mods ...qm.QueryMod) (int64, error)

// Fetcher lists pages of rows through a query and a count function.
type Fetcher[T any] struct {
	queryFunc QueryFunc[T]
	countFunc CountFunc
}

// NewFetcher creates a fetcher from the query and count functions of a table.
func NewFetcher[T any](queryFunc QueryFunc[T], countFunc CountFunc) *Fetcher[T] {
	return &Fetcher[T]{
		queryFunc: queryFunc,
		countFunc: countFunc,
	}
}

// List counts the rows matching where, then fetches the requested page and
// converts it with transform.
func (f *Fetcher[T]) List(
	ctx context.Context,
	page admin.Pagination,
	sort admin.Sort,
	where []qm.QueryMod,
	transform func(T) (admin.Record, error),
	opts ...offset.Option,
) (*admin.ListResult, error) {
	total, err := f.countFunc(ctx, where...)
	if err != nil {
		return nil, err
	}

	paginator := offset.New(page, sort, total, opts...)

	mods := append(append([]qm.QueryMod{}, where...), paginator.QueryMods()...)
	items, err := f.queryFunc(ctx, mods...)
	if err != nil {
		return nil, err
	}

	return admin.BuildListResult(items, int(total), transform)
}
