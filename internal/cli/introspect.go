package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/graphql"
)

type introspectOutput struct {
	Resource   string            `json:"resource,omitempty"`
	Type       string            `json:"type"`
	Operations map[string]string `json:"operations"`
	Meta       string            `json:"meta,omitempty"`
}

// NewIntrospectCommand creates the introspect command.
func NewIntrospectCommand(rootOpts *RootOptions, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "introspect",
		Short: "Show the resources and operations the backend exposes",
		Long: `Fetch the backend schema and print every type treated as a resource
with the root operation serving each verb.

Examples:
  admin introspect
  admin introspect --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Introspect == nil {
				return NewExitError(ExitCommandError, "introspect requires the graphql backend")
			}

			result, err := deps.Introspect(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "introspection failed", err)
			}

			out := describeResources(result, deps.Resources)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, res := range out {
				if res.Resource != "" {
					fmt.Fprintf(tw, "%s (%s)\n", res.Resource, res.Type)
				} else {
					fmt.Fprintf(tw, "%s\n", res.Type)
				}
				for _, verb := range admin.Verbs {
					if name, ok := res.Operations[verb.String()]; ok {
						fmt.Fprintf(tw, "  %s\t%s\n", verb, name)
					}
				}
				if res.Meta != "" {
					fmt.Fprintf(tw, "  meta\t%s\n", res.Meta)
				}
			}
			return tw.Flush()
		},
	}
}

// describeResources lists the introspected resources sorted by type name,
// named after the configured resource serving each type.
func describeResources(result *graphql.IntrospectionResult, resources map[string]string) []introspectOutput {
	names := lo.Invert(resources)
	types := lo.Keys(result.Resources)
	slices.Sort(types)

	return lo.Map(types, func(typeName string, _ int) introspectOutput {
		res := result.Resources[typeName]
		out := introspectOutput{
			Resource:   names[typeName],
			Type:       typeName,
			Operations: map[string]string{},
		}
		for verb, field := range res.Operations {
			out.Operations[verb.String()] = field.Name
		}
		if res.Meta != nil {
			out.Meta = res.Meta.Name
		}
		return out
	})
}
