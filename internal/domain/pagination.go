package domain

import "math"

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize, saturating at math.MaxInt.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size used as the query LIMIT.
func (p PaginationParams) Limit() int {
	if p.PageSize < 0 {
		return 0
	}
	return p.PageSize
}

// TotalPages returns ceil(total / pageSize). A non-positive page size or an
// empty result yields 0.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageMeta is the pagination metadata attached to every paginated result.
// swagger:model PageMeta
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageMeta builds PageMeta from the request params and the total row count.
func NewPageMeta(p PaginationParams, total int) PageMeta {
	return PageMeta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, p.PageSize),
	}
}

// Page is one page of a listing together with its metadata.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageMeta `json:"pagination"`
}

// NewPage returns a Page with a non-nil Items slice.
func NewPage[T any](items []T, p PaginationParams, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Pagination: NewPageMeta(p, total)}
}

// EmptyPage returns a page with no items and a zero total.
func EmptyPage[T any](p PaginationParams) *Page[T] {
	return NewPage[T](nil, p, 0)
}
