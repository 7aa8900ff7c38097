package admin

// Order is a sort direction.
type Order string

const (
	ASC  Order = "ASC"
	DESC Order = "DESC"
)

// Valid reports whether o is ASC or DESC.
func (o Order) Valid() bool {
	return o == ASC || o == DESC
}

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == DESC {
		return ASC
	}
	return DESC
}

// Sort is a single sort directive.
type Sort struct {
	Field string `json:"field"`
	Order Order  `json:"order"`
}

// Filter maps filter keys to values.
// Values may be scalars, slices (membership) or anything a backend understands.
type Filter map[string]any

// Clone returns a shallow copy of the filter.
func (f Filter) Clone() Filter {
	if f == nil {
		return Filter{}
	}
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Pagination selects a page of results. Page is 1-based.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// Params is implemented by the request parameters of every verb.
type Params interface {
	Verb() Verb
}

// ListParams are the parameters of GetList.
type ListParams struct {
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// GetOneParams are the parameters of GetOne.
type GetOneParams struct {
	ID Identifier
}

// GetManyParams are the parameters of GetMany.
type GetManyParams struct {
	IDs []Identifier
}

// GetManyReferenceParams are the parameters of GetManyReference.
// Target is the field of the referencing resource that must equal ID.
type GetManyReferenceParams struct {
	Target     string
	ID         Identifier
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// CreateParams are the parameters of Create.
type CreateParams struct {
	Data Record
}

// UpdateParams are the parameters of Update.
// PreviousData is the record as the caller last saw it, if known.
type UpdateParams struct {
	ID           Identifier
	Data         Record
	PreviousData Record
}

// UpdateManyParams are the parameters of UpdateMany.
type UpdateManyParams struct {
	IDs  []Identifier
	Data Record
}

// DeleteParams are the parameters of Delete.
type DeleteParams struct {
	ID           Identifier
	PreviousData Record
}

// DeleteManyParams are the parameters of DeleteMany.
type DeleteManyParams struct {
	IDs []Identifier
}

func (ListParams) Verb() Verb             { return GetList }
func (GetOneParams) Verb() Verb           { return GetOne }
func (GetManyParams) Verb() Verb          { return GetMany }
func (GetManyReferenceParams) Verb() Verb { return GetManyReference }
func (CreateParams) Verb() Verb           { return Create }
func (UpdateParams) Verb() Verb           { return Update }
func (UpdateManyParams) Verb() Verb       { return UpdateMany }
func (DeleteParams) Verb() Verb           { return Delete }
func (DeleteManyParams) Verb() Verb       { return DeleteMany }

// Result is implemented by the response of every verb.
type Result interface {
	result()
}

// ListResult is returned by GetList and GetManyReference.
type ListResult struct {
	Data  []Record `json:"data"`
	Total int      `json:"total"`
}

// RecordResult is returned by GetOne, Create, Update and Delete.
type RecordResult struct {
	Data Record `json:"data"`
}

// RecordsResult is returned by GetMany.
type RecordsResult struct {
	Data []Record `json:"data"`
}

// IDsResult is returned by UpdateMany and DeleteMany.
type IDsResult struct {
	Data []Identifier `json:"data"`
}

func (*ListResult) result()    {}
func (*RecordResult) result()  {}
func (*RecordsResult) result() {}
func (*IDsResult) result()     {}
