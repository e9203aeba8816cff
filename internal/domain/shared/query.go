package shared

// MaxPageSize caps the number of rows a list query may return
const MaxPageSize = 100

const defaultPageSize = 20

// Filter narrows and pages a tenant-scoped listing.
// Filters holds listing specific criteria such as a category or a status.
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]interface{}
}

// Normalized returns a copy with the page clamped to 1.. and the page size to 1..MaxPageSize
func (f Filter) Normalized() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = defaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	return f
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a listing plus the total row count
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items. A nil slice becomes empty so it encodes as [].
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	var pages int
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
