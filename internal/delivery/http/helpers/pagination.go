package helpers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"artistevents/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size inside an int.
	MaxPage         = math.MaxInt / MaxPageSize
)

// ParsePagination reads page and page_size from the query string. Missing
// values fall back to defaults, page_size above MaxPageSize is clamped, and
// anything that is not a positive integer, or a page past MaxPage, is an error.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	page, err := positiveInt(q.Get("page"), DefaultPage)
	if err != nil {
		return domain.PaginationParams{}, fmt.Errorf("page: %w", err)
	}
	if page > MaxPage {
		return domain.PaginationParams{}, fmt.Errorf("page: must not exceed %d", MaxPage)
	}
	pageSize, err := positiveInt(q.Get("page_size"), DefaultPageSize)
	if err != nil {
		return domain.PaginationParams{}, fmt.Errorf("page_size: %w", err)
	}
	return domain.PaginationParams{Page: page, PageSize: min(pageSize, MaxPageSize)}, nil
}

func positiveInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("must be a positive integer, got %q", s)
	}
	return v, nil
}
