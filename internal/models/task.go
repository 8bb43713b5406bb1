package models

import "strings"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	DefaultPriority = PriorityLow
)

// Valid reports whether p is one of the three stored priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Label is the capitalised form shown in the priority column.
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Task JSON names match what the browser dashboard kept in localStorage.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category,omitempty"`
	Completed   bool     `json:"completed"`
}

// Draft is the unvalidated field set a caller hands to Create/Update.
// Completed is only honoured by Update; nil keeps the current value.
type Draft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	DueDate     string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string   `json:"category"`
	Completed   *bool    `json:"completed,omitempty"`
}

// DraftFrom prefills a draft from an existing task (edit form).
func DraftFrom(t Task) Draft {
	completed := t.Completed
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Category:    t.Category,
		Completed:   &completed,
	}
}
