// Package listing holds the search and sort helpers shared by list endpoints.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidSort is returned for an unknown sort field or order.
var ErrInvalidSort = errors.New("invalid sort")

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "", "asc" and "desc". Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: order %q", ErrInvalidSort, s)
	}
}

// Apply flips cmp for descending order.
func (o Order) Apply(cmp int) int {
	if o == Desc {
		return -cmp
	}
	return cmp
}

// Fold returns the case-folded form of s used for matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Contains reports whether any of fields contains query, ignoring case.
// An empty query matches everything.
func Contains(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := Fold(query)
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// CompareFold compares two strings ignoring case, falling back to a byte
// comparison so the result is a total order.
func CompareFold(a, b string) int {
	if c := strings.Compare(Fold(a), Fold(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
