package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// MaxPage keeps (page-1)*limit far from int64 overflow.
const MaxPage = math.MaxInt32

type PageRequest struct {
	Page  int
	Limit int
}

// Normalize replaces non-positive values with the defaults and clamps
// oversized ones to MaxPage and MaxLimit.
func (p PageRequest) Normalize() PageRequest {
	switch {
	case p.Page < 1:
		p.Page = DefaultPage
	case p.Page > MaxPage:
		p.Page = MaxPage
	}
	switch {
	case p.Limit < 1:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

func (p PageRequest) Offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

type Page[T any] struct {
	Docs          []T   `json:"docs"`
	TotalDocs     int64 `json:"totalDocs"`
	Limit         int   `json:"limit"`
	Page          int   `json:"page"`
	TotalPages    int64 `json:"totalPages"`
	PagingCounter int64 `json:"pagingCounter"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	HasNextPage   bool  `json:"hasNextPage"`
	PrevPage      *int  `json:"prevPage"`
	NextPage      *int  `json:"nextPage"`
}

func NewPage[T any](docs []T, total int64, req PageRequest) Page[T] {
	req = req.Normalize()
	if docs == nil {
		docs = []T{}
	}

	totalPages := (total + int64(req.Limit) - 1) / int64(req.Limit)
	if totalPages == 0 {
		totalPages = 1
	}

	p := Page[T]{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         req.Limit,
		Page:          req.Page,
		TotalPages:    totalPages,
		PagingCounter: req.Offset() + 1,
		HasPrevPage:   req.Page > 1,
		HasNextPage:   int64(req.Page) < totalPages,
	}
	if p.HasPrevPage {
		prev := req.Page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := req.Page + 1
		p.NextPage = &next
	}
	return p
}
