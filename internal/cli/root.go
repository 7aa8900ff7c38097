// Package cli implements the admin command line: it inspects a GraphQL
// backend and lists, reads, updates and deletes records through any
// admin.DataProvider.
package cli

import (
	"context"
	"slices"

	"github.com/friendsofgo/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/graphql"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
}

// Deps are the collaborators the commands run against.
type Deps struct {
	Provider admin.DataProvider

	// Introspect returns the backend schema. Nil for backends without one.
	Introspect func(ctx context.Context) (*graphql.IntrospectionResult, error)

	// Resources maps resource names to backend type names.
	Resources map[string]string

	ListConfig *admin.ListConfig
	Logger     *zap.Logger

	// Gatherer, when set, is dumped to the log after each command in
	// verbose mode.
	Gatherer prometheus.Gatherer
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Deps) listConfig() *admin.ListConfig {
	if d.ListConfig == nil {
		return admin.NewListConfig()
	}
	return d.ListConfig
}

// NewRootCommand creates the root command of the admin CLI.
func NewRootCommand(deps *Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inspect and edit admin resources",
		Long:  "Runs data provider verbs against the configured GraphQL or REST backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, "invalid format "+opts.Format+": must be text or json")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				logMetrics(deps)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log provider metrics after the command")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewIntrospectCommand(opts, deps))
	cmd.AddCommand(NewListCommand(opts, deps))
	cmd.AddCommand(NewGetCommand(opts, deps))
	cmd.AddCommand(NewUpdateCommand(opts, deps))
	cmd.AddCommand(NewDeleteCommand(opts, deps))
	cmd.AddCommand(NewCallCommand(deps))

	return cmd
}

// backendError maps provider errors to exit codes: unknown resources are
// usage mistakes, everything else is a failed call.
func backendError(message string, err error) error {
	if errors.Is(err, admin.ErrUnknownResource) {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

func logMetrics(deps *Deps) {
	if deps.Gatherer == nil {
		return
	}
	logger := deps.logger()

	families, err := deps.Gatherer.Gather()
	if err != nil {
		logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}

	for _, family := range families {
		for _, m := range family.GetMetric() {
			fields := []zap.Field{zap.String("metric", family.GetName())}
			for _, label := range m.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			logger.Info("provider metric", fields...)
		}
	}
}
