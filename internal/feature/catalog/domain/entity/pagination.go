package entity

import "strconv"

// Pagination describes where a listing page sits among all pages.
type Pagination struct {
	CurrentPage  int
	NextPage     int
	PreviousPage int
	LastPage     int
	HasNextPage  bool
	HasPrevPage  bool
	Total        int64
}

// NewPagination computes the navigation for 1-based page of size items out of total.
// A page past the end is still described; it simply has no items.
func NewPagination(page, size int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	last := 0
	if size > 0 {
		last = int((total + int64(size) - 1) / int64(size))
	}
	return Pagination{
		CurrentPage:  page,
		NextPage:     page + 1,
		PreviousPage: page - 1,
		LastPage:     last,
		HasNextPage:  total > int64(size)*int64(page),
		HasPrevPage:  page > 1,
		Total:        total,
	}
}

// Offset is the number of items before page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return size * (page - 1)
}

// ParsePage reads a ?page= value. Absent, non-numeric and non-positive values mean page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
