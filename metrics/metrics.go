// Package metrics instruments data providers with Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nrfta/admin-go"
)

// Outcome label values.
const (
	OutcomeSuccess           = "success"
	OutcomeUnknownResource   = "unknown_resource"
	OutcomeUnresolvable      = "unresolvable_operation"
	OutcomeBackendRejected   = "backend_rejected"
	OutcomeDeletionUnconfirm = "deletion_not_confirmed"
	OutcomeError             = "error"
)

type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates the provider metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_data_provider_requests_total",
			Help: "Total number of data provider calls by outcome",
		}, []string{"resource", "verb", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_data_provider_request_duration_seconds",
			Help:    "Data provider call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "verb"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Requests, m.Duration} {
			if err := reg.Register(c); err != nil {
				return nil, errors.Wrap(err, "register metrics")
			}
		}
	}
	return m, nil
}

// Record counts one call of verb on resource.
func (m *Metrics) Record(resource string, verb admin.Verb, err error, duration time.Duration) {
	m.Requests.WithLabelValues(resource, verb.String(), Outcome(err)).Inc()
	m.Duration.WithLabelValues(resource, verb.String()).Observe(duration.Seconds())
}

// Outcome returns the outcome label of err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, admin.ErrUnknownResource):
		return OutcomeUnknownResource
	case errors.Is(err, admin.ErrUnresolvableOperation):
		return OutcomeUnresolvable
	case errors.Is(err, admin.ErrDeletionNotConfirmed):
		return OutcomeDeletionUnconfirm
	case errors.Is(err, admin.ErrBackendRejected):
		return OutcomeBackendRejected
	default:
		return OutcomeError
	}
}

// Wrap returns provider instrumented with m.
func (m *Metrics) Wrap(provider admin.DataProvider) admin.DataProvider {
	return &instrumented{next: provider, metrics: m}
}

type instrumented struct {
	next    admin.DataProvider
	metrics *Metrics
}

func observe[R any](m *Metrics, resource string, verb admin.Verb, call func() (R, error)) (R, error) {
	start := time.Now()
	res, err := call()
	m.Record(resource, verb, err, time.Since(start))
	return res, err
}

func (i *instrumented) GetList(ctx context.Context, resource string, params admin.ListParams) (*admin.ListResult, error) {
	return observe(i.metrics, resource, admin.GetList, func() (*admin.ListResult, error) {
		return i.next.GetList(ctx, resource, params)
	})
}

func (i *instrumented) GetOne(ctx context.Context, resource string, params admin.GetOneParams) (*admin.RecordResult, error) {
	return observe(i.metrics, resource, admin.GetOne, func() (*admin.RecordResult, error) {
		return i.next.GetOne(ctx, resource, params)
	})
}

func (i *instrumented) GetMany(ctx context.Context, resource string, params admin.GetManyParams) (*admin.RecordsResult, error) {
	return observe(i.metrics, resource, admin.GetMany, func() (*admin.RecordsResult, error) {
		return i.next.GetMany(ctx, resource, params)
	})
}

func (i *instrumented) GetManyReference(ctx context.Context, resource string, params admin.GetManyReferenceParams) (*admin.ListResult, error) {
	return observe(i.metrics, resource, admin.GetManyReference, func() (*admin.ListResult, error) {
		return i.next.GetManyReference(ctx, resource, params)
	})
}

func (i *instrumented) Create(ctx context.Context, resource string, params admin.CreateParams) (*admin.RecordResult, error) {
	return observe(i.metrics, resource, admin.Create, func() (*admin.RecordResult, error) {
		return i.next.Create(ctx, resource, params)
	})
}

func (i *instrumented) Update(ctx context.Context, resource string, params admin.UpdateParams) (*admin.RecordResult, error) {
	return observe(i.metrics, resource, admin.Update, func() (*admin.RecordResult, error) {
		return i.next.Update(ctx, resource, params)
	})
}

func (i *instrumented) UpdateMany(ctx context.Context, resource string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	return observe(i.metrics, resource, admin.UpdateMany, func() (*admin.IDsResult, error) {
		return i.next.UpdateMany(ctx, resource, params)
	})
}

func (i *instrumented) Delete(ctx context.Context, resource string, params admin.DeleteParams) (*admin.RecordResult, error) {
	return observe(i.metrics, resource, admin.Delete, func() (*admin.RecordResult, error) {
		return i.next.Delete(ctx, resource, params)
	})
}

func (i *instrumented) DeleteMany(ctx context.Context, resource string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	return observe(i.metrics, resource, admin.DeleteMany, func() (*admin.IDsResult, error) {
		return i.next.DeleteMany(ctx, resource, params)
	})
}
