package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go/graphql"
	"github.com/nrfta/admin-go/internal/config"
	"github.com/nrfta/admin-go/metrics"
	"github.com/nrfta/admin-go/rest"
)

// NewDeps builds the provider described by cfg, instrumented with metrics
// registered on reg.
func NewDeps(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (*Deps, error) {
	resources := lo.MapValues(cfg.Resources, func(typeName, name string) string {
		if typeName == "" {
			return graphql.TypeName(name)
		}
		return typeName
	})

	deps := &Deps{
		Resources:  resources,
		ListConfig: cfg.ListConfig(),
		Logger:     logger,
	}

	switch cfg.Backend {
	case config.BackendREST:
		opts := []rest.Option{
			rest.WithTimeout(cfg.HTTP.Timeout),
			rest.WithRetry(cfg.HTTP.RetryMax, cfg.HTTP.RetryWaitMin, cfg.HTTP.RetryWaitMax),
			rest.WithListConfig(deps.ListConfig),
			rest.WithLogger(logger),
		}
		if cfg.HTTP.AuthToken != "" {
			opts = append(opts, rest.WithHeader("Authorization", "Bearer "+cfg.HTTP.AuthToken))
		}
		if len(resources) > 0 {
			opts = append(opts, rest.WithResources(lo.Keys(resources)...))
		}
		deps.Provider = rest.New(cfg.REST.URL, opts...)

	default:
		clientOpts := []graphql.ClientOption{
			graphql.WithTimeout(cfg.HTTP.Timeout),
			graphql.WithRetry(cfg.HTTP.RetryMax, cfg.HTTP.RetryWaitMin, cfg.HTTP.RetryWaitMax),
		}
		if cfg.HTTP.AuthToken != "" {
			clientOpts = append(clientOpts, graphql.WithHeader("Authorization", "Bearer "+cfg.HTTP.AuthToken))
		}
		provider := graphql.New(graphql.NewHTTPClient(cfg.GraphQL.URL, clientOpts...), resources,
			graphql.WithLogger(logger))
		deps.Provider = provider
		deps.Introspect = provider.Introspection
	}

	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			return nil, err
		}
		deps.Provider = m.Wrap(deps.Provider)
		deps.Gatherer = reg
	}

	return deps, nil
}
