package graphql

import (
	"context"
	"sync"

	"github.com/friendsofgo/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver fetches a fresh introspection result.
type Resolver func(ctx context.Context) (*IntrospectionResult, error)

// Introspector memoizes the introspection result of one provider.
//
// The first Get performs the fetch; concurrent callers during that fetch
// share it, and each stops waiting when its own context is done. Failures
// are not cached. Invalidate drops the cached result so
// the next Get fetches again.
type Introspector struct {
	resolve Resolver
	logger  *zap.Logger
	group   singleflight.Group

	mu         sync.RWMutex
	cached     *IntrospectionResult
	generation uint64
}

// NewIntrospector creates an Introspector that fetches with resolve.
func NewIntrospector(resolve Resolver, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Introspector{resolve: resolve, logger: logger}
}

// NewStaticIntrospector returns an Introspector that always serves result
// and never fetches.
func NewStaticIntrospector(result *IntrospectionResult) *Introspector {
	return &Introspector{
		resolve: func(context.Context) (*IntrospectionResult, error) { return result, nil },
		logger:  zap.NewNop(),
		cached:  result,
	}
}

const introspectionKey = "introspection"

// Get returns the cached result, fetching it first if needed.
func (i *Introspector) Get(ctx context.Context) (*IntrospectionResult, error) {
	i.mu.RLock()
	cached, generation := i.cached, i.generation
	i.mu.RUnlock()

	if cached != nil {
		return cached, nil
	}

	ch := i.group.DoChan(introspectionKey, func() (any, error) {
		i.mu.RLock()
		cached := i.cached
		i.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		i.logger.Debug("fetching introspection")

		// The fetch is shared, so one caller giving up must not fail the others.
		result, err := i.resolve(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, errors.New("introspection returned no result")
		}

		i.mu.Lock()
		if i.generation == generation {
			i.cached = result
		}
		i.mu.Unlock()

		i.logger.Debug("introspection ready", zap.Int("resources", len(result.Resources)))
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for introspection")
	case res := <-ch:
		if res.Err != nil {
			i.logger.Debug("introspection failed", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return nil, res.Err
		}
		return res.Val.(*IntrospectionResult), nil
	}
}

// Invalidate drops the cached result. A fetch already in flight still
// completes for its callers but is not cached.
func (i *Introspector) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.cached = nil
	i.generation++
	i.group.Forget(introspectionKey)
}
