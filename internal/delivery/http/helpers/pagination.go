package helpers

import (
	"errors"
	"net/http"
	"strconv"

	"guestcheckin/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePage reads page and page_size from the query string. Missing values
// take defaults and page_size is capped at MaxPageSize; malformed or
// non-positive values are reported so the caller can answer 400.
func ParsePage(r *http.Request) (domain.Page, error) {
	page := domain.Page{Number: 1, Size: DefaultPageSize}
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return page, errors.New("page must be a positive integer")
		}
		page.Number = n
	}
	if s := q.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return page, errors.New("page_size must be a positive integer")
		}
		page.Size = min(n, MaxPageSize)
	}
	return page, nil
}

// PageMeta describes the returned window of a paginated list.
// swagger:model PageMeta
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

func NewPageMeta(page domain.Page, total int) PageMeta {
	pages := 0
	if page.Size > 0 {
		pages = (total + page.Size - 1) / page.Size
	}
	return PageMeta{
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: pages,
		HasMore:    page.Number < pages,
	}
}
