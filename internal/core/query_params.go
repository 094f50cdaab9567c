// internal/core/query_params.go
package core

import (
	"math"
	"strings"
)

// Default and limit constants for pagination
const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 150
	// MaxPage keeps the offset of any page within int.
	MaxPage = math.MaxInt / MaxLimit
)

// Pagination is the effective page window of a list request.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// NormalizePagination clamps page to [1, MaxPage] and limit to [1, MaxLimit].
// A zero limit means "not supplied" and becomes DefaultLimit.
func NormalizePagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ClampLimit bounds an autocomplete or lookup limit the same way list limits are.
func ClampLimit(limit int) int {
	return NormalizePagination(1, limit).Limit
}

// ParseOrdering splits "-field" into ("field", true) and "field" into ("field", false).
func ParseOrdering(ordering string) (field string, desc bool) {
	ordering = strings.TrimSpace(ordering)
	if strings.HasPrefix(ordering, "-") {
		return ordering[1:], true
	}
	return ordering, false
}
