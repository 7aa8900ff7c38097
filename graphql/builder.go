package graphql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// Builder turns (verb, resource, params) into GraphQL operations using an
// introspection result. It holds no mutable state and can be shared.
type Builder struct {
	introspection *IntrospectionResult
	resources     map[string]string
	overrides     map[string]Override
}

// NewBuilder creates a Builder.
//
// resources maps resource names ("posts") to backend type names ("Post");
// resources missing from it are rejected with ErrUnknownResource. overrides
// is keyed by OverrideKey.
func NewBuilder(introspection *IntrospectionResult, resources map[string]string, overrides map[string]Override) *Builder {
	if introspection == nil {
		introspection = BuildIntrospectionResult(Schema{}, IntrospectionOptions{})
	}
	return &Builder{
		introspection: introspection,
		resources:     resources,
		overrides:     overrides,
	}
}

// BuildQuery builds the operation for a verb call.
//
// The default operation is built from the introspection result, then the
// override registered for the resource and verb, if any, is merged over it.
// When the backend has no default operation the override alone is used, as
// long as it provides a document. The resulting document is classified
// before it is returned.
func (b *Builder) BuildQuery(verb admin.Verb, resource string, params admin.Params) (*Operation, error) {
	typeName, ok := b.resources[resource]
	if !ok {
		return nil, admin.UnknownResource(verb, resource)
	}
	if params == nil || params.Verb() != verb {
		return nil, admin.BackendRejected(verb, resource, errors.Errorf("params %T do not match %s", params, verb))
	}

	var (
		op       *Operation
		buildErr error
	)
	if res, known := b.introspection.Resource(typeName); known {
		op, buildErr = b.build(verb, resource, res, params)
		if buildErr != nil {
			buildErr = admin.UnresolvableOperation(verb, resource, buildErr)
		}
	} else {
		buildErr = admin.UnknownResource(verb, resource)
	}

	if override, ok := b.overrides[OverrideKey(resource, verb)]; ok {
		partial, err := callOverride(override, params)
		if err != nil {
			return nil, admin.BackendRejected(verb, resource, err)
		}
		if buildErr != nil && (partial == nil || partial.Query == "") {
			return nil, buildErr
		}
		if buildErr != nil {
			op, buildErr = nil, nil
		}
		op = op.merge(partial)
	}

	if buildErr != nil {
		return nil, buildErr
	}

	kind, err := Classify(op.Query)
	if err != nil {
		return nil, admin.UnresolvableOperation(verb, resource, err)
	}
	op.Kind = kind

	if op.ParseResponse == nil {
		return nil, admin.UnresolvableOperation(verb, resource, errors.New("operation has no response parser"))
	}

	return op, nil
}

// callOverride runs an override, turning a panic into an error.
func callOverride(override Override, params admin.Params) (op *Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("override panicked: %v", r)
		}
	}()
	return override(params)
}

func (b *Builder) build(verb admin.Verb, resource string, res Resource, params admin.Params) (*Operation, error) {
	field, ok := res.Operation(singleVerb(verb))
	if !ok {
		return nil, errors.Errorf("backend has no %s operation for %s", singleVerb(verb), res.Type.Name)
	}

	switch p := params.(type) {
	case admin.ListParams:
		return b.buildList(res, field, p.Pagination, p.Sort, p.Filter), nil

	case admin.GetManyReferenceParams:
		filter := p.Filter.Clone()
		filter[p.Target] = p.ID
		return b.buildList(res, field, p.Pagination, p.Sort, filter), nil

	case admin.GetManyParams:
		return b.buildGetMany(field, p), nil

	case admin.GetOneParams:
		return b.buildSingle("query", field, map[string]any{admin.IDField: p.ID}, func(data admin.Record) admin.Record {
			return data
		}), nil

	case admin.CreateParams:
		return b.buildSingle("mutation", field, p.Data, func(data admin.Record) admin.Record {
			if data == nil {
				return p.Data.Clone()
			}
			return data
		}), nil

	case admin.UpdateParams:
		values := p.Data.Merge(admin.Record{admin.IDField: p.ID})
		return b.buildSingle("mutation", field, values, func(data admin.Record) admin.Record {
			if data == nil {
				return p.PreviousData.Merge(values)
			}
			return data
		}), nil

	case admin.DeleteParams:
		return b.buildDelete(resource, field, p), nil

	case admin.UpdateManyParams:
		return b.buildBatch(verb, field, p.IDs, p.Data)

	case admin.DeleteManyParams:
		return b.buildBatch(verb, field, p.IDs, nil)

	default:
		return nil, errors.Errorf("unsupported params type %T", params)
	}
}

// buildList builds a paginated list query. page is sent 0-based.
func (b *Builder) buildList(res Resource, field Field, pagination admin.Pagination, sort admin.Sort, filter admin.Filter) *Operation {
	values := map[string]any{}
	if pagination.PerPage > 0 {
		values["perPage"] = pagination.PerPage
		if pagination.Page > 0 {
			values["page"] = pagination.Page - 1
		}
	}
	if sort.Field != "" {
		values["sortField"] = sort.Field
		if sort.Order.Valid() {
			values["sortOrder"] = string(sort.Order)
		}
	}
	if len(filter) > 0 {
		values["filter"] = b.filterValue(field, filter)
	}

	call := newFieldCall(field, values, "")
	vars := call.vars
	defs := call.defs

	var body strings.Builder
	fmt.Fprintf(&body, "  items: %s%s%s\n", field.Name, call.args(), b.selection(field.Type))

	if res.Meta != nil {
		meta := newFieldCall(*res.Meta, values, "")
		for _, d := range meta.defs {
			if !lo.Contains(defs, d) {
				defs = append(defs, d)
			}
		}
		for k, v := range meta.vars {
			vars[k] = v
		}
		fmt.Fprintf(&body, "  total: %s%s%s\n", res.Meta.Name, meta.args(), b.selection(res.Meta.Type))
	}

	return &Operation{
		Query:         document("query", field.Name, defs, body.String()),
		OperationName: field.Name,
		Variables:     vars,
		ParseResponse: func(data json.RawMessage) (admin.Result, error) {
			var payload struct {
				Items []admin.Record `json:"items"`
				Total *struct {
					Count int `json:"count"`
				} `json:"total"`
			}
			if err := decode(data, &payload); err != nil {
				return nil, err
			}

			total := len(payload.Items)
			if payload.Total != nil {
				total = payload.Total.Count
			}
			return admin.BuildListResult(payload.Items, total, func(r admin.Record) (admin.Record, error) {
				return r, nil
			})
		},
	}
}

func (b *Builder) buildGetMany(field Field, p admin.GetManyParams) *Operation {
	ids := p.IDs
	if ids == nil {
		ids = []admin.Identifier{}
	}
	call := newFieldCall(field, map[string]any{"filter": map[string]any{"ids": ids}}, "")

	body := fmt.Sprintf("  items: %s%s%s\n", field.Name, call.args(), b.selection(field.Type))

	return &Operation{
		Query:         document("query", field.Name, call.defs, body),
		OperationName: field.Name,
		Variables:     call.vars,
		ParseResponse: func(data json.RawMessage) (admin.Result, error) {
			var payload struct {
				Items []admin.Record `json:"items"`
			}
			if err := decode(data, &payload); err != nil {
				return nil, err
			}
			if payload.Items == nil {
				payload.Items = []admin.Record{}
			}
			return &admin.RecordsResult{Data: payload.Items}, nil
		},
	}
}

// buildSingle builds a single-record query or mutation whose result is
// aliased to data. fallback fills in a record when the backend returns null.
func (b *Builder) buildSingle(kind string, field Field, values map[string]any, fallback func(admin.Record) admin.Record) *Operation {
	call := newFieldCall(field, values, "")
	body := fmt.Sprintf("  data: %s%s%s\n", field.Name, call.args(), b.selection(field.Type))

	return &Operation{
		Query:         document(kind, field.Name, call.defs, body),
		OperationName: field.Name,
		Variables:     call.vars,
		ParseResponse: func(data json.RawMessage) (admin.Result, error) {
			var payload struct {
				Data admin.Record `json:"data"`
			}
			if err := decode(data, &payload); err != nil {
				return nil, err
			}
			return &admin.RecordResult{Data: fallback(payload.Data)}, nil
		},
	}
}

// buildDelete builds a delete mutation. Backends returning a scalar from
// their delete mutation must confirm the deletion with a truthy value.
func (b *Builder) buildDelete(resource string, field Field, p admin.DeleteParams) *Operation {
	named := field.Type.Named()
	if named.Kind == KindObject || named.Kind == KindInterface {
		return b.buildSingle("mutation", field, map[string]any{admin.IDField: p.ID}, func(data admin.Record) admin.Record {
			if data == nil {
				return p.PreviousData.Merge(admin.Record{admin.IDField: p.ID})
			}
			return data
		})
	}

	call := newFieldCall(field, map[string]any{admin.IDField: p.ID}, "")
	body := fmt.Sprintf("  data: %s%s\n", field.Name, call.args())

	return &Operation{
		Query:         document("mutation", field.Name, call.defs, body),
		OperationName: field.Name,
		Variables:     call.vars,
		ParseResponse: func(data json.RawMessage) (admin.Result, error) {
			var payload struct {
				Data any `json:"data"`
			}
			if err := decode(data, &payload); err != nil {
				return nil, err
			}
			if !truthy(payload.Data) {
				return nil, admin.DeletionNotConfirmed(resource)
			}
			return &admin.RecordResult{Data: p.PreviousData.Merge(admin.Record{admin.IDField: p.ID})}, nil
		},
	}
}

// buildBatch builds one mutation calling field once per id, each call
// aliased r<i>. The whole batch succeeds or fails together.
func (b *Builder) buildBatch(verb admin.Verb, field Field, ids []admin.Identifier, data admin.Record) (*Operation, error) {
	if len(ids) == 0 {
		return nil, errors.New("no identifiers given")
	}

	var (
		defs []string
		body strings.Builder
		vars = map[string]any{}
	)

	selection := ""
	named := field.Type.Named()
	if t, ok := b.introspection.Type(named.NamedType()); ok && (named.Kind == KindObject || named.Kind == KindInterface) {
		if _, hasID := t.Field(admin.IDField); hasID {
			selection = " { id }"
		}
	}

	for i, id := range ids {
		values := data.Merge(admin.Record{admin.IDField: id})
		call := newFieldCall(field, values, fmt.Sprintf("_%d", i))
		defs = append(defs, call.defs...)
		for k, v := range call.vars {
			vars[k] = v
		}
		fmt.Fprintf(&body, "  r%d: %s%s%s\n", i, field.Name, call.args(), selection)
	}

	name := verb.String() + named.NamedType()
	if named.NamedType() == "" {
		name = verb.String()
	}

	return &Operation{
		Query:         document("mutation", name, defs, body.String()),
		OperationName: name,
		Variables:     vars,
		ParseResponse: func(raw json.RawMessage) (admin.Result, error) {
			var payload map[string]any
			if err := decode(raw, &payload); err != nil {
				return nil, err
			}

			for i, id := range ids {
				if !truthy(payload[fmt.Sprintf("r%d", i)]) {
					return nil, errors.Errorf("%s not applied to %v", field.Name, id)
				}
			}
			return &admin.IDsResult{Data: append([]admin.Identifier{}, ids...)}, nil
		},
	}, nil
}

// filterValue drops filter keys that the filter input type does not declare.
// Filters are sent unchanged when the input type is unknown.
func (b *Builder) filterValue(field Field, filter admin.Filter) map[string]any {
	out := map[string]any(filter.Clone())

	arg, ok := field.Arg("filter")
	if !ok {
		return out
	}
	input, ok := b.introspection.Type(arg.Type.NamedType())
	if !ok || input.Kind != KindInputObject || len(input.InputFields) == 0 {
		return out
	}

	return lo.PickBy(out, func(key string, _ any) bool {
		_, declared := input.InputField(key)
		return declared
	})
}

// selection returns the selection set for a field of the given type:
// scalar and enum fields, plus { id } for related objects.
func (b *Builder) selection(ref TypeRef) string {
	named := ref.Named()
	if named.Kind != KindObject && named.Kind != KindInterface {
		return ""
	}

	t, ok := b.introspection.Type(named.NamedType())
	if !ok {
		return " { id }"
	}

	fields := lo.FilterMap(t.Fields, func(f Field, _ int) (string, bool) {
		if requiresArgs(f) {
			return "", false
		}

		inner := f.Type.Named()
		switch inner.Kind {
		case KindScalar, KindEnum:
			return f.Name, true
		case KindObject, KindInterface:
			related, ok := b.introspection.Type(inner.NamedType())
			if !ok {
				return "", false
			}
			if _, hasID := related.Field(admin.IDField); !hasID {
				return "", false
			}
			return f.Name + " { id }", true
		default:
			return "", false
		}
	})
	if len(fields) == 0 {
		return ""
	}

	return " { " + strings.Join(fields, " ") + " }"
}

func requiresArgs(f Field) bool {
	return lo.ContainsBy(f.Args, func(a InputValue) bool {
		return a.Type.Kind == KindNonNull && a.DefaultValue == nil
	})
}

// fieldCall holds the arguments of one root field call. Only arguments the
// field declares are sent; other values are dropped.
type fieldCall struct {
	defs  []string
	pairs []string
	vars  map[string]any
}

func newFieldCall(field Field, values map[string]any, suffix string) fieldCall {
	call := fieldCall{vars: map[string]any{}}
	for _, arg := range field.Args {
		value, ok := values[arg.Name]
		if !ok {
			continue
		}

		name := arg.Name + suffix
		call.defs = append(call.defs, fmt.Sprintf("$%s: %s", name, arg.Type))
		call.pairs = append(call.pairs, fmt.Sprintf("%s: $%s", arg.Name, name))
		call.vars[name] = value
	}
	return call
}

func (c fieldCall) args() string {
	if len(c.pairs) == 0 {
		return ""
	}
	return "(" + strings.Join(c.pairs, ", ") + ")"
}

func document(kind, name string, defs []string, body string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteString(" ")
	sb.WriteString(name)
	if len(defs) > 0 {
		sb.WriteString("(" + strings.Join(defs, ", ") + ")")
	}
	sb.WriteString(" {\n")
	sb.WriteString(body)
	sb.WriteString("}")
	return sb.String()
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return errors.New("response has no data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
