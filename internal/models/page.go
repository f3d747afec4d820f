package models

import "math"

const (
	// MaxLimit caps every page size
	MaxLimit = 100
	// MaxPage caps the requested page number
	MaxPage = 1000000
)

// Page is a resolved page/limit pair. Page starts at 1.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.Limit {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the page count for total rows
func (p Page) TotalPages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// ListParams is the raw pagination query shared by list endpoints
type ListParams struct {
	Page   *int   `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
	Q      string `form:"q" binding:"max=200"`
	Search string `form:"search" binding:"max=200"`
}

// Term returns the search term from q or search
func (p ListParams) Term() string {
	if p.Q != "" {
		return p.Q
	}
	return p.Search
}

// Resolve fills page 1 and the resource's default limit where absent
func (p ListParams) Resolve(defaultLimit int) Page {
	page := Page{Page: 1, Limit: defaultLimit}
	if p.Page != nil {
		page.Page = *p.Page
	}
	if p.Limit != nil {
		page.Limit = *p.Limit
	}
	return page
}

// Requested reports whether the caller asked for pagination
func (p ListParams) Requested() bool {
	return p.Page != nil || p.Limit != nil
}
