package service

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder orders list results by name.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps the empty string to SortAsc and rejects anything else
// that is not asc or desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", invalid("sort", "must be asc or desc")
}

// ListOptions filters and orders a management list.
type ListOptions struct {
	// Search keeps records whose name contains it, ignoring case.
	Search string
	Sort   SortOrder
}

// filterAndSort applies opts to records, keyed by name.
func filterAndSort[T any](records []T, name func(T) string, opts ListOptions) []T {
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	result := make([]T, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(name(r)), needle) {
			result = append(result, r)
		}
	}

	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(result, func(a, b T) int {
		c := col.CompareString(name(a), name(b))
		if opts.Sort == SortDesc {
			return -c
		}
		return c
	})
	return result
}
