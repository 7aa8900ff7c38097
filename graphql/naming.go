package graphql

import (
	"github.com/aarondl/strmangle"

	"github.com/nrfta/admin-go"
)

// OperationNamer returns the root field name of a verb for a backend type.
type OperationNamer func(typeName string) string

// OperationNames maps verbs to their namers. Batch verbs reuse the namers
// of their single-record counterparts.
type OperationNames map[admin.Verb]OperationNamer

// DefaultOperationNames returns the default naming scheme:
//
//	getList, getMany, getManyReference -> allPosts
//	getOne                             -> Post
//	create / update / delete           -> createPost / updatePost / deletePost
func DefaultOperationNames() OperationNames {
	all := func(typeName string) string { return "all" + strmangle.Plural(typeName) }

	return OperationNames{
		admin.GetList:          all,
		admin.GetOne:           func(typeName string) string { return typeName },
		admin.GetMany:          all,
		admin.GetManyReference: all,
		admin.Create:           func(typeName string) string { return "create" + typeName },
		admin.Update:           func(typeName string) string { return "update" + typeName },
		admin.Delete:           func(typeName string) string { return "delete" + typeName },
	}
}

// merge returns a copy of n with the namers of overrides applied on top.
func (n OperationNames) merge(overrides OperationNames) OperationNames {
	out := make(OperationNames, len(n)+len(overrides))
	for verb, namer := range n {
		out[verb] = namer
	}
	for verb, namer := range overrides {
		if namer != nil {
			out[verb] = namer
		}
	}
	return out
}

// singleVerb maps batch verbs to the verb whose operation they repeat.
func singleVerb(verb admin.Verb) admin.Verb {
	switch verb {
	case admin.UpdateMany:
		return admin.Update
	case admin.DeleteMany:
		return admin.Delete
	default:
		return verb
	}
}

// metaOperationName is the name of the count query that accompanies list queries.
func metaOperationName(typeName string) string {
	return "_all" + strmangle.Plural(typeName) + "Meta"
}

// TypeName derives a backend type name from a resource name,
// e.g. "posts" -> "Post" and "blog_posts" -> "BlogPost".
func TypeName(resource string) string {
	return strmangle.TitleCase(strmangle.Singular(resource))
}
