package admin

import "github.com/friendsofgo/errors"

// Verb is one of the nine operations every DataProvider supports.
type Verb int

const (
	GetList Verb = iota + 1
	GetOne
	GetMany
	GetManyReference
	Create
	Update
	UpdateMany
	Delete
	DeleteMany
)

// Verbs lists every verb in declaration order.
var Verbs = []Verb{
	GetList,
	GetOne,
	GetMany,
	GetManyReference,
	Create,
	Update,
	UpdateMany,
	Delete,
	DeleteMany,
}

var verbNames = map[Verb]string{
	GetList:          "getList",
	GetOne:           "getOne",
	GetMany:          "getMany",
	GetManyReference: "getManyReference",
	Create:           "create",
	Update:           "update",
	UpdateMany:       "updateMany",
	Delete:           "delete",
	DeleteMany:       "deleteMany",
}

// String returns the wire name of the verb, e.g. "getList".
func (v Verb) String() string {
	if name, ok := verbNames[v]; ok {
		return name
	}
	return "unknown"
}

// IsMutation reports whether the verb changes data on the backend.
func (v Verb) IsMutation() bool {
	switch v {
	case Create, Update, UpdateMany, Delete, DeleteMany:
		return true
	default:
		return false
	}
}

// IsBatch reports whether the verb operates on a list of identifiers.
func (v Verb) IsBatch() bool {
	return v == GetMany || v == UpdateMany || v == DeleteMany
}

// ParseVerb returns the verb for a wire name such as "getList".
func ParseVerb(name string) (Verb, error) {
	for verb, candidate := range verbNames {
		if candidate == name {
			return verb, nil
		}
	}
	return 0, errors.Errorf("unknown verb %q", name)
}
