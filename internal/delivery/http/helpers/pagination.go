package helpers

import (
	"net/http"
	"strconv"

	"eventcheckin/internal/domain"
)

// Page size bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing or
// non-positive values fall back to page 1 and DefaultPageSize; page_size is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     min(positiveInt(q.Get("page"), 1), maxPage),
		PageSize: min(positiveInt(q.Get("page_size"), DefaultPageSize), MaxPageSize),
	}
}

// maxPage keeps the row offset well inside an int on any realistic page size.
const maxPage = 1 << 20

func positiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// PaginationMeta describes the page returned by a list endpoint.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PageOf builds the metadata for the page p out of total rows.
func PageOf(p domain.PaginationParams, total int) PaginationMeta {
	meta := PaginationMeta{Page: p.Page, PageSize: p.PageSize, Total: total}
	if p.PageSize > 0 {
		meta.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	return meta
}
