package graphql

import (
	"context"
	"encoding/json"

	"github.com/friendsofgo/errors"
	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// IntrospectionOptions controls which types are treated as resources.
type IntrospectionOptions struct {
	// OperationNames overrides the default namers per verb.
	OperationNames OperationNames

	// Include, when set, lists the only type names considered resources.
	Include []string

	// Exclude lists type names never considered resources. Ignored when
	// Include is set.
	Exclude []string
}

// Resource is a backend type together with the root operations that serve it.
type Resource struct {
	Type FullType

	// Operations maps each verb the backend supports to its root field.
	Operations map[admin.Verb]Field

	// Meta is the count field of list queries, when the backend has one.
	Meta *Field
}

// Operation returns the root field for verb, if the backend has it.
func (r Resource) Operation(verb admin.Verb) (Field, bool) {
	f, ok := r.Operations[verb]
	return f, ok
}

// IntrospectionResult is what the query builder knows about a backend.
// It is read-only once built.
type IntrospectionResult struct {
	Types     []FullType
	Queries   []Field
	Resources map[string]Resource
	Schema    Schema

	types map[string]FullType
}

// Type returns the full type with the given name.
func (r *IntrospectionResult) Type(name string) (FullType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Resource returns the resource built for a backend type name.
func (r *IntrospectionResult) Resource(typeName string) (Resource, bool) {
	res, ok := r.Resources[typeName]
	return res, ok
}

// BuildIntrospectionResult turns a raw schema into an IntrospectionResult.
//
// A type is a resource when the backend exposes its list operation. Every
// other verb is attached when its root field exists.
func BuildIntrospectionResult(schema Schema, opts IntrospectionOptions) *IntrospectionResult {
	names := DefaultOperationNames().merge(opts.OperationNames)

	rootNames := lo.FilterMap([]*TypeRef{schema.QueryType, schema.MutationType}, func(ref *TypeRef, _ int) (string, bool) {
		if ref == nil || ref.Name == nil {
			return "", false
		}
		return *ref.Name, true
	})

	result := &IntrospectionResult{
		Schema:    schema,
		Resources: map[string]Resource{},
		types:     make(map[string]FullType, len(schema.Types)),
	}

	for _, t := range schema.Types {
		result.types[t.Name] = t
		if lo.Contains(rootNames, t.Name) {
			result.Queries = append(result.Queries, t.Fields...)
			continue
		}
		if !t.IsBuiltin() {
			result.Types = append(result.Types, t)
		}
	}

	queries := lo.SliceToMap(result.Queries, func(f Field) (string, Field) {
		return f.Name, f
	})

	for _, t := range result.Types {
		if t.Kind != KindObject || !selected(t.Name, opts) {
			continue
		}

		listField, ok := queries[names[admin.GetList](t.Name)]
		if !ok {
			continue
		}

		res := Resource{
			Type:       t,
			Operations: map[admin.Verb]Field{admin.GetList: listField},
		}
		for verb, namer := range names {
			if f, ok := queries[namer(t.Name)]; ok {
				res.Operations[verb] = f
			}
		}
		if meta, ok := queries[metaOperationName(t.Name)]; ok {
			res.Meta = &meta
		}

		result.Resources[t.Name] = res
	}

	return result
}

func selected(typeName string, opts IntrospectionOptions) bool {
	if len(opts.Include) > 0 {
		return lo.Contains(opts.Include, typeName)
	}
	return !lo.Contains(opts.Exclude, typeName)
}

// Introspect fetches the schema of the backend behind client.
func Introspect(ctx context.Context, client Client, opts IntrospectionOptions) (*IntrospectionResult, error) {
	resp, err := client.Do(ctx, &Request{
		Query:         IntrospectionQuery,
		OperationName: "IntrospectionQuery",
	})
	if err != nil {
		return nil, errors.Wrap(err, "introspection request")
	}
	if len(resp.Errors) > 0 {
		return nil, errors.Wrap(resp.Errors, "introspection")
	}

	var payload struct {
		Schema Schema `json:"__schema"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, errors.Wrap(err, "decode introspection")
	}

	return BuildIntrospectionResult(payload.Schema, opts), nil
}
