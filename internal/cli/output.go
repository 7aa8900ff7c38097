package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/friendsofgo/errors"
	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the backend rejected the call
	ExitCommandError = 2 // bad flags, arguments or configuration
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError exit with ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// listOutput is the JSON shape of the list command.
type listOutput struct {
	Data     []admin.Record `json:"data"`
	Total    int            `json:"total"`
	PageInfo pageInfoOutput `json:"page_info"`
}

type pageInfoOutput struct {
	Page            int  `json:"page"`
	PerPage         int  `json:"per_page"`
	LastPage        int  `json:"last_page"`
	HasPreviousPage bool `json:"has_previous_page"`
	HasNextPage     bool `json:"has_next_page"`
}

func newPageInfoOutput(info admin.PageInfo) pageInfoOutput {
	return pageInfoOutput{
		Page:            info.Page,
		PerPage:         info.PerPage,
		LastPage:        info.LastPage,
		HasPreviousPage: info.HasPreviousPage,
		HasNextPage:     info.HasNextPage,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// columns returns the union of the record fields, id first and the rest sorted.
func columns(records []admin.Record) []string {
	keys := lo.Uniq(lo.FlatMap(records, func(r admin.Record, _ int) []string {
		return lo.Keys(r)
	}))
	keys = lo.Without(keys, admin.IDField)
	slices.Sort(keys)
	return append([]string{admin.IDField}, keys...)
}

// writeTable prints records as aligned columns.
func writeTable(w io.Writer, records []admin.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := columns(records)

	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, r := range records {
		for i, col := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell(r[col]))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

func pageFooter(info admin.PageInfo) string {
	return fmt.Sprintf("\npage %d of %d (%d total)\n", info.Page, info.LastPage, info.TotalCount)
}
