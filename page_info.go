package admin

// PageInfo contains metadata about the page of a list that was fetched.
type PageInfo struct {
	Page            int
	PerPage         int
	TotalCount      int
	LastPage        int
	HasPreviousPage bool
	HasNextPage     bool
}

// NewPageInfo returns a PageInfo object with data filled in, based on page pagination.
func NewPageInfo(p Pagination, totalCount int) PageInfo {
	last := LastPage(totalCount, p.PerPage)

	return PageInfo{
		Page:            p.Page,
		PerPage:         p.PerPage,
		TotalCount:      totalCount,
		LastPage:        last,
		HasPreviousPage: p.Page > 1,
		HasNextPage:     p.Page < last,
	}
}

// NewEmptyPageInfo returns an empty PageInfo, for lists that have not loaded yet.
func NewEmptyPageInfo() PageInfo {
	return PageInfo{LastPage: 1}
}

// LastPage returns ceil(total/perPage), never less than 1.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}

	last := total / perPage
	if total%perPage != 0 {
		last++
	}
	return last
}

// ClampPage keeps page within [1, LastPage(total, perPage)].
func ClampPage(page, perPage, total int) int {
	if page < 1 {
		return 1
	}
	if last := LastPage(total, perPage); page > last {
		return last
	}
	return page
}
