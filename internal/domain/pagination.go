package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageIndex  int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page from the current page's items and the total row count.
func NewPage[T any](items []T, params PaginationParams, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return Page[T]{
		Items:      items,
		PageIndex:  params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (p Page[T]) HasPreviousPage() bool { return p.PageIndex > 1 }

func (p Page[T]) HasNextPage() bool { return p.PageIndex < p.TotalPages }
