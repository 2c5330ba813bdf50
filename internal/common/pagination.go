package common

import "math"

// MaxPage bounds page numbers so the offset stays representable.
const MaxPage = 1_000_000

// Pagination is a clamped page request. Oversized page sizes are reduced to
// the maximum, never rejected.
type Pagination struct {
	Page     int
	PageSize int
}

func NewPagination(page, pageSize, defaultSize, maxSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if maxSize > 0 && pageSize > maxSize {
		pageSize = maxSize
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize > 0 && page-1 > math.MaxInt/pageSize {
		page = math.MaxInt/pageSize + 1
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Limit() int { return p.PageSize }

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }
