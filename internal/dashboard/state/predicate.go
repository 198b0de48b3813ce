package state

import (
	"strings"

	"github.com/ougirez/bizmap/internal/domain"
)

// Matches is the single filter predicate shared by every view. Pure:
// no side effects, no view-local variants.
func Matches(c Criteria, b *domain.Business) bool {
	if c.City != "" && b.City != c.City {
		return false
	}

	if c.Category != "" && !categoryMatches(c.Category, b) {
		return false
	}

	if c.Rating != 0 && b.Stars != float64(c.Rating) {
		return false
	}

	if c.Status != nil {
		open := b.IsOpen == 1
		if open != *c.Status {
			return false
		}
	}

	return true
}

// categoryMatches reports whether the filter string is a
// case-insensitive substring of at least one of the business's tags.
func categoryMatches(filter string, b *domain.Business) bool {
	needle := strings.ToLower(filter)
	for _, tag := range b.CategoryList() {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Filter returns the subset of businesses matching c, preserving order.
func Filter(c Criteria, businesses []*domain.Business) []*domain.Business {
	filtered := make([]*domain.Business, 0, len(businesses))
	for _, b := range businesses {
		if Matches(c, b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
