package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
)

// PaginationParams is a normalized page request
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the pagination block of list responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginationParams clamps page to at least 1 and limit to MaxPageSize.
// A missing or non-positive limit falls back to DefaultPageSize.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// GetPaginationParams reads page and limit from the query string. pageSize is
// accepted as an alias of limit.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))

	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("pageSize")
	}
	limit, _ := strconv.Atoi(raw)

	return NewPaginationParams(page, limit)
}

// Response builds the pagination block for a result total
func (p PaginationParams) Response(total int64) PaginationResponse {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationResponse{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
