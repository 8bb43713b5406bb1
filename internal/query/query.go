// Package query derives the visible task list from the collection and the
// user's current filter and search text. Nothing here keeps state.
package query

import (
	"strings"

	"github.com/chepyr/task-dashboard/internal/models"
)

type options struct {
	searchDescriptions bool
}

type Option func(*options)

// WithDescriptionSearch makes the search text match the description as well
// as the title.
func WithDescriptionSearch(enabled bool) Option {
	return func(o *options) { o.searchDescriptions = enabled }
}

// Visible returns the tasks that pass both the priority filter and the
// case-insensitive search, in their original order. The input is not modified.
func Visible(tasks []models.Task, filter models.PriorityFilter, search string, opts ...Option) []models.Task {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	needle := strings.ToLower(search)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t.Priority) {
			continue
		}
		if !matchesSearch(t, needle, o.searchDescriptions) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t models.Task, needle string, descriptions bool) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return descriptions && strings.Contains(strings.ToLower(t.Description), needle)
}

// Criteria is the filter state a view holds between renders.
type Criteria struct {
	Priority           models.PriorityFilter `json:"priority"`
	Search             string                `json:"search"`
	SearchDescriptions bool                  `json:"searchDescriptions"`
}

func (c Criteria) Apply(tasks []models.Task) []models.Task {
	return Visible(tasks, c.Priority, c.Search, WithDescriptionSearch(c.SearchDescriptions))
}
