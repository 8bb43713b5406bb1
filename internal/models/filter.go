package models

import (
	"fmt"
	"strings"
)

type PriorityFilter string

const (
	FilterAll    PriorityFilter = "all"
	FilterLow    PriorityFilter = PriorityFilter(PriorityLow)
	FilterMedium PriorityFilter = PriorityFilter(PriorityMedium)
	FilterHigh   PriorityFilter = PriorityFilter(PriorityHigh)
)

// ParsePriorityFilter accepts the select values of the filter dropdown.
// An empty value means "all".
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	switch f := PriorityFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterLow, FilterMedium, FilterHigh:
		return f, nil
	default:
		return "", fmt.Errorf("unknown priority filter %q", s)
	}
}

// Matches reports whether a task with priority p passes the filter.
func (f PriorityFilter) Matches(p Priority) bool {
	return f == "" || f == FilterAll || Priority(f) == p
}
