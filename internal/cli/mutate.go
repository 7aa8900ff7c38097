package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nrfta/admin-go"
)

type mutationOutput struct {
	Resource string             `json:"resource"`
	Action   string             `json:"action"`
	IDs      []admin.Identifier `json:"ids"`
}

func writeMutation(cmd *cobra.Command, format string, out mutationOutput) error {
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s\n", len(out.IDs), out.Resource, out.Action)
	return err
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions, deps *Deps) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "update <resource> <id>...",
		Short: "Apply the same changes to one or more records",
		Example: `  admin update posts 3 --set title="Hello"
  admin update posts 3 4 5 --set published=true`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(assignments)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid update flags", err)
			}
			if len(data) == 0 {
				return NewExitError(ExitCommandError, "nothing to update: pass at least one --set")
			}

			res, err := deps.Provider.UpdateMany(cmd.Context(), args[0], admin.UpdateManyParams{
				IDs:  parseIDs(args[1:]),
				Data: data,
			})
			if err != nil {
				return backendError("update failed", err)
			}
			return writeMutation(cmd, rootOpts.Format, mutationOutput{Resource: args[0], Action: "updated", IDs: res.Data})
		},
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field to change as key=value, repeatable")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <resource> <id>...",
		Short:   "Delete one or more records",
		Example: `  admin delete posts 3 4`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Provider.DeleteMany(cmd.Context(), args[0], admin.DeleteManyParams{IDs: parseIDs(args[1:])})
			if err != nil {
				return backendError("delete failed", err)
			}
			return writeMutation(cmd, rootOpts.Format, mutationOutput{Resource: args[0], Action: "deleted", IDs: res.Data})
		},
	}
}
