package cli

import (
	"github.com/spf13/cobra"

	"github.com/nrfta/admin-go"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Fetch one record",
		Example: `  admin get posts 12
  admin get users 0b7c6f2e-6d1a-4f43-9f4c-2f9d5c1f3f9a --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Provider.GetOne(cmd.Context(), args[0], admin.GetOneParams{ID: parseID(args[1])})
			if err != nil {
				return backendError("get failed", err)
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res.Data)
			}
			return writeTable(cmd.OutOrStdout(), []admin.Record{res.Data})
		},
	}
}
