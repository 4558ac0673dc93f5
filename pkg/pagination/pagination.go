// Package pagination slices list responses by page query parameters.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// FromRequest extracts pagination parameters from an HTTP request,
// falling back to the first page of 20 on missing or invalid values.
func FromRequest(r *http.Request) Params {
	p := Params{Page: 1, PerPage: defaultPerPage}

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}
	if perPage := r.URL.Query().Get("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPerPage {
			p.PerPage = v
		}
	}
	return p
}

// Result is one page of records with paging metadata.
type Result[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate slices an in-memory record list into the requested page.
// Items is never nil.
func Paginate[T any](records []T, p Params) Result[T] {
	total := len(records)
	totalPages := total / p.PerPage
	if total%p.PerPage > 0 {
		totalPages++
	}

	offset := (p.Page - 1) * p.PerPage
	items := []T{}
	if offset < total {
		end := offset + p.PerPage
		if end > total {
			end = total
		}
		items = append(items, records[offset:end]...)
	}

	return Result[T]{
		Items:      items,
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
