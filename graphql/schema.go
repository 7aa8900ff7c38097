package graphql

import "strings"

// Type kinds reported by introspection.
const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// Schema is the __schema part of an introspection response.
type Schema struct {
	QueryType        *TypeRef   `json:"queryType"`
	MutationType     *TypeRef   `json:"mutationType"`
	SubscriptionType *TypeRef   `json:"subscriptionType"`
	Types            []FullType `json:"types"`
}

// FullType represents a complete GraphQL type with all its metadata
type FullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field represents a field in a GraphQL type
type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

// InputValue represents an input value (argument or input field)
type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// TypeRef represents a reference to a GraphQL type (with support for nested types)
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// EnumValue represents a value in a GraphQL enum
type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

// Named returns the innermost named type, unwrapping lists and non-null wrappers.
func (t TypeRef) Named() TypeRef {
	ref := t
	for ref.OfType != nil && (ref.Kind == KindList || ref.Kind == KindNonNull) {
		ref = *ref.OfType
	}
	return ref
}

// NamedType returns the name of the innermost named type.
func (t TypeRef) NamedType() string {
	named := t.Named()
	if named.Name == nil {
		return ""
	}
	return *named.Name
}

// IsList reports whether the type is a list, possibly wrapped in non-null.
func (t TypeRef) IsList() bool {
	if t.Kind == KindNonNull && t.OfType != nil {
		return t.OfType.IsList()
	}
	return t.Kind == KindList
}

// String renders the type in GraphQL syntax, e.g. [Post!]!.
func (t TypeRef) String() string {
	switch t.Kind {
	case KindNonNull:
		if t.OfType == nil {
			return ""
		}
		return t.OfType.String() + "!"
	case KindList:
		if t.OfType == nil {
			return "[]"
		}
		return "[" + t.OfType.String() + "]"
	default:
		if t.Name == nil {
			return ""
		}
		return *t.Name
	}
}

// Field returns the field with the given name.
func (t FullType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// InputField returns the input field with the given name.
func (t FullType) InputField(name string) (InputValue, bool) {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f, true
		}
	}
	return InputValue{}, false
}

// IsBuiltin reports whether the type is one of the introspection types.
func (t FullType) IsBuiltin() bool {
	return strings.HasPrefix(t.Name, "__")
}

// Arg returns the argument with the given name.
func (f Field) Arg(name string) (InputValue, bool) {
	for _, a := range f.Args {
		if a.Name == name {
			return a, true
		}
	}
	return InputValue{}, false
}

// IntrospectionQuery is the standard introspection query.
const IntrospectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      ...FullType
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args {
      ...InputValue
    }
    type {
      ...TypeRef
    }
    isDeprecated
    deprecationReason
  }
  inputFields {
    ...InputValue
  }
  interfaces {
    ...TypeRef
  }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes {
    ...TypeRef
  }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}`
