// Package pagination slices list queries into pages.
package pagination

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is the page and pageSize query parameters.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in missing values and caps the page size.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Scope limits a gorm query to the requested page.
func (p PageRequest) Scope() func(*gorm.DB) *gorm.DB {
	n := p.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((n.Page - 1) * n.PageSize).Limit(n.PageSize)
	}
}

// Page is one page of a list plus the size of the whole list.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int64
}

// NewPage builds a Page. Items is never nil.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}
}

// TotalPages is the number of pages needed for Total items.
func (p Page[T]) TotalPages() int {
	if p.PageSize < 1 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
