package common

import (
	"math"
	"net/url"
	"sort"
	"strconv"
)

// Pagination is the block the admin API attaches to every list response.
// Pages are 1-based.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds a pagination block the way the backend does.
// page: the current page number
// limit: the number of items per page
// total: the total count of items
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

func (p Pagination) HasPrev() bool { return p.Page > 1 }

// NextPage returns the following page number, or 0 when on the last page.
func (p Pagination) NextPage() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// PrevPage returns the preceding page number, or 0 when on the first page.
func (p Pagination) PrevPage() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

// QueryFromFilters turns a flat filter map into query parameters.
// Empty values mean "not applied" and are dropped.
func QueryFromFilters(filters map[string]string) url.Values {
	q := url.Values{}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// PageQuery adds page and limit to q and returns it.
func PageQuery(q url.Values, page, limit int) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
