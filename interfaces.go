// Package admin is the data layer of an admin panel: the DataProvider
// contract shared by every backend adapter, the record model, and the
// pagination settings used by list views.
//
// Backend adapters live in sub-packages (graphql, rest, sqlboiler, memory);
// list state handling lives in query and controller.
package admin

import (
	"context"

	"github.com/friendsofgo/errors"
)

// DataProvider is the contract every backend adapter implements.
//
// Each call resolves to exactly one outcome: the typed result, or an error
// whose kind is one of ErrUnknownResource, ErrUnresolvableOperation,
// ErrBackendRejected or ErrDeletionNotConfirmed. Implementations perform no
// caching and no retries; wrap them to add either.
//
// Batch verbs (UpdateMany, DeleteMany) either succeed for every id or fail
// the whole call; each adapter documents what the backend may have applied
// before a failure.
//
// Example:
//
//	res, err := provider.GetList(ctx, "posts", admin.ListParams{
//	    Pagination: admin.Pagination{Page: 1, PerPage: 25},
//	    Sort:       admin.Sort{Field: "title", Order: admin.ASC},
//	})
type DataProvider interface {
	GetList(ctx context.Context, resource string, params ListParams) (*ListResult, error)
	GetOne(ctx context.Context, resource string, params GetOneParams) (*RecordResult, error)
	GetMany(ctx context.Context, resource string, params GetManyParams) (*RecordsResult, error)
	GetManyReference(ctx context.Context, resource string, params GetManyReferenceParams) (*ListResult, error)
	Create(ctx context.Context, resource string, params CreateParams) (*RecordResult, error)
	Update(ctx context.Context, resource string, params UpdateParams) (*RecordResult, error)
	UpdateMany(ctx context.Context, resource string, params UpdateManyParams) (*IDsResult, error)
	Delete(ctx context.Context, resource string, params DeleteParams) (*RecordResult, error)
	DeleteMany(ctx context.Context, resource string, params DeleteManyParams) (*IDsResult, error)
}

// Dispatch calls the provider method matching the params type.
func Dispatch(ctx context.Context, provider DataProvider, resource string, params Params) (Result, error) {
	switch p := params.(type) {
	case ListParams:
		return unwrap(provider.GetList(ctx, resource, p))
	case GetOneParams:
		return unwrap(provider.GetOne(ctx, resource, p))
	case GetManyParams:
		return unwrap(provider.GetMany(ctx, resource, p))
	case GetManyReferenceParams:
		return unwrap(provider.GetManyReference(ctx, resource, p))
	case CreateParams:
		return unwrap(provider.Create(ctx, resource, p))
	case UpdateParams:
		return unwrap(provider.Update(ctx, resource, p))
	case UpdateManyParams:
		return unwrap(provider.UpdateMany(ctx, resource, p))
	case DeleteParams:
		return unwrap(provider.Delete(ctx, resource, p))
	case DeleteManyParams:
		return unwrap(provider.DeleteMany(ctx, resource, p))
	default:
		return nil, errors.Errorf("unsupported params type %T", params)
	}
}

// unwrap turns a typed (result, error) pair into a Result without leaking
// typed nil pointers into the interface.
func unwrap[R Result](res R, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ResultAs converts a generic Result into the concrete type a verb expects.
// It returns ErrBackendRejected when the result has the wrong shape.
func ResultAs[R Result](verb Verb, resource string, res Result) (R, error) {
	typed, ok := res.(R)
	if !ok {
		var zero R
		return zero, BackendRejected(verb, resource, errors.Errorf("unexpected result %T", res))
	}
	return typed, nil
}
