package cli

import (
	"bytes"
	"encoding/json"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cobra"

	"github.com/nrfta/admin-go"
)

func decodeInto[P admin.Params](raw string) (admin.Params, error) {
	var params P
	if raw == "" {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		return nil, errors.Wrap(err, "decoding params")
	}
	return params, nil
}

// decodeParams decodes a JSON object into the params type of verb.
// Field names match case-insensitively, so {"ids": [1, 2]} fills IDs.
func decodeParams(verb admin.Verb, raw string) (admin.Params, error) {
	var (
		params admin.Params
		err    error
	)
	switch verb {
	case admin.GetList:
		params, err = decodeInto[admin.ListParams](raw)
	case admin.GetOne:
		params, err = decodeInto[admin.GetOneParams](raw)
	case admin.GetMany:
		params, err = decodeInto[admin.GetManyParams](raw)
	case admin.GetManyReference:
		params, err = decodeInto[admin.GetManyReferenceParams](raw)
	case admin.Create:
		params, err = decodeInto[admin.CreateParams](raw)
	case admin.Update:
		params, err = decodeInto[admin.UpdateParams](raw)
	case admin.UpdateMany:
		params, err = decodeInto[admin.UpdateManyParams](raw)
	case admin.Delete:
		params, err = decodeInto[admin.DeleteParams](raw)
	case admin.DeleteMany:
		params, err = decodeInto[admin.DeleteManyParams](raw)
	default:
		return nil, errors.Errorf("unsupported verb %s", verb)
	}
	if err != nil {
		return nil, err
	}

	if verb.IsBatch() && len(batchIDs(params)) == 0 {
		return nil, errors.Errorf("%s needs at least one id", verb)
	}
	return params, nil
}

func batchIDs(params admin.Params) []admin.Identifier {
	switch p := params.(type) {
	case admin.GetManyParams:
		return p.IDs
	case admin.UpdateManyParams:
		return p.IDs
	case admin.DeleteManyParams:
		return p.IDs
	}
	return nil
}

// NewCallCommand creates the call command, which sends any verb with raw JSON params.
func NewCallCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "call <verb> <resource> [params]",
		Short: "Send one data provider verb with JSON params",
		Example: `  admin call getMany posts '{"ids": [1, 2]}'
  admin call create posts '{"data": {"title": "Hello"}}'
  admin call getList posts '{"pagination": {"page": 2, "perPage": 5}}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb, err := admin.ParseVerb(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid verb", err)
			}

			raw := ""
			if len(args) == 3 {
				raw = args[2]
			}
			params, err := decodeParams(verb, raw)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid params", err)
			}

			res, err := admin.Dispatch(cmd.Context(), deps.Provider, args[1], params)
			if err != nil {
				return backendError(verb.String()+" failed", err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}
