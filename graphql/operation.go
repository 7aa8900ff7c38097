package graphql

import (
	"encoding/json"
	"fmt"

	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/nrfta/admin-go"
)

// ResponseParser turns the data of a GraphQL response into a verb result.
type ResponseParser func(data json.RawMessage) (admin.Result, error)

// Operation is a GraphQL document ready to send, with the parser of its response.
type Operation struct {
	Query         string
	OperationName string
	Variables     map[string]any

	// Kind is the root operation kind of Query, set by the builder.
	Kind ast.Operation

	ParseResponse ResponseParser
}

// Request returns the wire request of the operation.
func (o *Operation) Request() *Request {
	return &Request{
		Query:         o.Query,
		OperationName: o.OperationName,
		Variables:     o.Variables,
	}
}

// Override replaces or extends the operation built for one resource and verb.
// Non-empty fields of the returned operation win over the built ones;
// Variables are merged key by key.
type Override func(params admin.Params) (*Operation, error)

// OverrideKey returns the key of an override, e.g. "posts.delete".
func OverrideKey(resource string, verb admin.Verb) string {
	return resource + "." + verb.String()
}

// merge applies partial on top of o. o may be nil.
func (o *Operation) merge(partial *Operation) *Operation {
	out := &Operation{Variables: map[string]any{}}
	if o != nil {
		*out = *o
		out.Variables = make(map[string]any, len(o.Variables))
		for k, v := range o.Variables {
			out.Variables[k] = v
		}
	}
	if partial == nil {
		return out
	}

	if partial.Query != "" {
		out.Query = partial.Query
		out.OperationName = partial.OperationName
	}
	if partial.OperationName != "" {
		out.OperationName = partial.OperationName
	}
	for k, v := range partial.Variables {
		out.Variables[k] = v
	}
	if partial.ParseResponse != nil {
		out.ParseResponse = partial.ParseResponse
	}
	return out
}

// Classify returns the kind of the first operation defined in query.
// A document that does not parse or defines no operation cannot be classified.
func Classify(query string) (ast.Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return "", err
	}
	if doc == nil || len(doc.Operations) == 0 {
		return "", errors.New("document has no operation definitions")
	}

	kind := doc.Operations[0].Operation
	switch kind {
	case ast.Query, ast.Mutation, ast.Subscription:
		return kind, nil
	default:
		return "", errors.Errorf("unknown operation kind %q", kind)
	}
}

// RemoveDelete is an Override for backends that delete with a
// remove<Resource>(id) mutation returning a confirmation flag.
//
// The response parser fails with ErrDeletionNotConfirmed unless the flag is
// truthy, instead of accepting an empty payload like the other parsers do.
//
// Example:
//
//	provider := graphql.New(client, resources,
//	    graphql.WithOverride("posts", admin.Delete, graphql.RemoveDelete("posts")))
func RemoveDelete(resource string) Override {
	name := "remove" + strmangle.TitleCase(resource)

	return func(params admin.Params) (*Operation, error) {
		p, ok := params.(admin.DeleteParams)
		if !ok {
			return nil, errors.Errorf("%s expects delete params, got %T", name, params)
		}

		return &Operation{
			Query:         fmt.Sprintf("mutation %s($id: ID!) {\n  %s(id: $id)\n}", name, name),
			OperationName: name,
			Variables:     map[string]any{"id": p.ID},
			ParseResponse: func(data json.RawMessage) (admin.Result, error) {
				var payload map[string]any
				if len(data) > 0 {
					if err := json.Unmarshal(data, &payload); err != nil {
						return nil, errors.Wrap(err, "decode response")
					}
				}

				if !truthy(payload[name]) {
					return nil, admin.DeletionNotConfirmed(resource)
				}
				return &admin.RecordResult{Data: admin.Record{admin.IDField: p.ID}}, nil
			},
		}, nil
	}
}

// truthy reports whether a decoded JSON value counts as a confirmation.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
