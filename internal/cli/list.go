package cli

import (
	"github.com/spf13/cobra"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/controller"
	"github.com/nrfta/admin-go/query"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Page    int
	PerPage int
	Sort    string
	Order   string
	Filters []string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions, deps *Deps) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Fetch one page of a resource",
		Long: `Fetch one page of a resource through the list controller.

Pages past the end are clamped to the last page. Filter values are read
as JSON when they parse, so numbers, booleans and arrays keep their type.

Examples:
  admin list posts
  admin list posts --page 2 --per-page 25 --sort title --order asc
  admin list posts --filter author_id=1 --filter q=hello --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, deps, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "page size (default from ADMIN_DEFAULT_PER_PAGE)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort field (default id)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sort order (asc|desc)")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "filter as key=value, repeatable")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions, deps *Deps, resource string) error {
	cfg := deps.listConfig()

	state, err := opts.state(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid list flags", err)
	}

	list := controller.New(deps.Provider, resource,
		controller.WithConfig(cfg),
		controller.WithInitialState(state),
		controller.WithLogger(deps.logger()),
	)
	defer list.Close()

	snap := list.Load(cmd.Context())
	if snap.Err != nil {
		return backendError("list failed", snap.Err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), listOutput{
			Data:     snap.Data,
			Total:    snap.Total,
			PageInfo: newPageInfoOutput(snap.PageInfo),
		})
	}

	if err := writeTable(cmd.OutOrStdout(), snap.Data); err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write([]byte(pageFooter(snap.PageInfo)))
	return err
}

// state builds the query state the flags describe.
func (o *ListOptions) state(cfg *admin.ListConfig) (query.State, error) {
	state := query.NewState(cfg)

	if o.Page > 1 {
		state.Page = o.Page
	}
	state.PerPage = cfg.EffectivePerPage(o.PerPage)

	if o.Sort != "" || o.Order != "" {
		order, err := parseOrder(o.Order)
		if err != nil {
			return state, err
		}
		field := o.Sort
		if field == "" {
			field = state.Sort.Field
		}
		state.Sort = admin.Sort{Field: field, Order: order}
	}

	filter, err := parseAssignments(o.Filters)
	if err != nil {
		return state, err
	}
	state.Filter = admin.Filter(filter)

	return state, nil
}
