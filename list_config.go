package admin

import "fmt"

const (
	// DefaultPerPage is the page size of a list when none is configured.
	DefaultPerPage = 10

	// DefaultMaxPerPage is the default maximum page size allowed.
	// This protects backends against unreasonably large page requests.
	DefaultMaxPerPage = 1000
)

// ListConfig holds the pagination defaults of a list.
// Use NewListConfig() to create a config with sensible defaults,
// then customize using the With* methods.
//
// Example:
//
//	config := admin.NewListConfig().WithDefaultPerPage(25).WithMaxPerPage(500)
//	perPage := config.EffectivePerPage(requested)
type ListConfig struct {
	// DefaultPerPage is the page size used when none is requested.
	DefaultPerPage int

	// MaxPerPage is the maximum allowed page size. Requests exceeding this
	// are capped to MaxPerPage by EffectivePerPage and rejected by Validate.
	MaxPerPage int

	// DefaultSort is the initial sort of a list.
	DefaultSort Sort
}

// NewListConfig creates a ListConfig with sensible defaults:
// - DefaultPerPage: 10
// - MaxPerPage: 1000
// - DefaultSort: id DESC
func NewListConfig() *ListConfig {
	return &ListConfig{
		DefaultPerPage: DefaultPerPage,
		MaxPerPage:     DefaultMaxPerPage,
		DefaultSort:    Sort{Field: IDField, Order: DESC},
	}
}

// WithDefaultPerPage sets the default page size and returns the config for chaining.
func (c *ListConfig) WithDefaultPerPage(size int) *ListConfig {
	if size > 0 {
		c.DefaultPerPage = size
	}
	return c
}

// WithMaxPerPage sets the maximum page size and returns the config for chaining.
func (c *ListConfig) WithMaxPerPage(size int) *ListConfig {
	if size > 0 {
		c.MaxPerPage = size
	}
	return c
}

// WithDefaultSort sets the initial sort and returns the config for chaining.
// Empty fields and invalid orders are ignored.
func (c *ListConfig) WithDefaultSort(field string, order Order) *ListConfig {
	if field != "" && order.Valid() {
		c.DefaultSort = Sort{Field: field, Order: order}
	}
	return c
}

// EffectivePerPage returns the page size to use, applying defaults and caps.
// - If requested is zero or negative, returns DefaultPerPage
// - If requested exceeds MaxPerPage, returns MaxPerPage
// - Otherwise returns requested
func (c *ListConfig) EffectivePerPage(requested int) int {
	if c == nil {
		c = NewListConfig()
	}

	defaultSize := c.DefaultPerPage
	if defaultSize <= 0 {
		defaultSize = DefaultPerPage
	}

	maxSize := c.MaxPerPage
	if maxSize <= 0 {
		maxSize = DefaultMaxPerPage
	}

	if requested <= 0 {
		return defaultSize
	}

	if requested > maxSize {
		return maxSize
	}

	return requested
}

// Validate checks the requested pagination against MaxPerPage.
// Unlike EffectivePerPage which caps silently, Validate returns an error for
// explicit rejection of invalid requests.
func (c *ListConfig) Validate(p Pagination) error {
	if c == nil {
		c = NewListConfig()
	}

	maxSize := c.MaxPerPage
	if maxSize <= 0 {
		maxSize = DefaultMaxPerPage
	}

	if p.PerPage > maxSize {
		return &PerPageError{
			Requested: p.PerPage,
			Maximum:   maxSize,
		}
	}

	return nil
}

// PerPageError is returned when the requested page size exceeds the maximum allowed.
type PerPageError struct {
	Requested int
	Maximum   int
}

func (e *PerPageError) Error() string {
	return fmt.Sprintf("requested page size %d exceeds maximum allowed page size of %d",
		e.Requested, e.Maximum)
}
