package controller_test

import (
	"context"
	"sync"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/controller"
)

// fakeProvider answers GetList and the batch verbs with the configured
// functions and records every list call.
type fakeProvider struct {
	mu    sync.Mutex
	lists []admin.ListParams

	getList    func(params admin.ListParams) (*admin.ListResult, error)
	updateMany func(params admin.UpdateManyParams) (*admin.IDsResult, error)
	deleteMany func(params admin.DeleteManyParams) (*admin.IDsResult, error)
}

func (f *fakeProvider) listCalls() []admin.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]admin.ListParams{}, f.lists...)
}

func (f *fakeProvider) GetList(_ context.Context, _ string, params admin.ListParams) (*admin.ListResult, error) {
	f.mu.Lock()
	f.lists = append(f.lists, params)
	f.mu.Unlock()
	return f.getList(params)
}

func (f *fakeProvider) GetOne(context.Context, string, admin.GetOneParams) (*admin.RecordResult, error) {
	return &admin.RecordResult{}, nil
}

func (f *fakeProvider) GetMany(context.Context, string, admin.GetManyParams) (*admin.RecordsResult, error) {
	return &admin.RecordsResult{}, nil
}

func (f *fakeProvider) GetManyReference(context.Context, string, admin.GetManyReferenceParams) (*admin.ListResult, error) {
	return &admin.ListResult{}, nil
}

func (f *fakeProvider) Create(context.Context, string, admin.CreateParams) (*admin.RecordResult, error) {
	return &admin.RecordResult{}, nil
}

func (f *fakeProvider) Update(context.Context, string, admin.UpdateParams) (*admin.RecordResult, error) {
	return &admin.RecordResult{}, nil
}

func (f *fakeProvider) UpdateMany(_ context.Context, _ string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	return f.updateMany(params)
}

func (f *fakeProvider) Delete(context.Context, string, admin.DeleteParams) (*admin.RecordResult, error) {
	return &admin.RecordResult{}, nil
}

func (f *fakeProvider) DeleteMany(_ context.Context, _ string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	return f.deleteMany(params)
}

var _ admin.DataProvider = (*fakeProvider)(nil)

// recorder collects notifications.
type recorder struct {
	mu    sync.Mutex
	notes []controller.Notification
}

func (r *recorder) Notify(_ context.Context, n controller.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []controller.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]controller.Notification{}, r.notes...)
}

// pageOf returns the records with ids from..to.
func pageOf(from, to int) []admin.Record {
	out := []admin.Record{}
	for i := from; i <= to; i++ {
		out = append(out, admin.Record{"id": i, "title": "post"})
	}
	return out
}
