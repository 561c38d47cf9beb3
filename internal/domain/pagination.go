package domain

// PaginationParams selects one page of a listing. The zero value selects every row.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Paginated reports whether p limits the result set.
func (p PaginationParams) Paginated() bool {
	return p.PageSize > 0
}

// Offset returns the 0-based row offset of the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
