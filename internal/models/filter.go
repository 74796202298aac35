package models

import "strings"

// SortOrder selects the created_at ordering of a task query.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// CompletionFilter narrows a task query by completion state.
type CompletionFilter string

const (
	FilterAll       CompletionFilter = "all"
	FilterActive    CompletionFilter = "active"
	FilterCompleted CompletionFilter = "completed"
)

// TaskFilter holds the filter portion of a task query. The same filter is
// used for the count request and the data request so the two stay consistent.
type TaskFilter struct {
	Completion CompletionFilter
	Search     string
}

// Matches reports whether a task satisfies the filter: the completion state
// must agree and, when a search term is set, it must appear as a
// case-insensitive substring of the title or the description.
func (f TaskFilter) Matches(task *TaskWithUser) bool {
	switch f.Completion {
	case FilterActive:
		if task.IsCompleted {
			return false
		}
	case FilterCompleted:
		if !task.IsCompleted {
			return false
		}
	}

	if f.Search == "" {
		return true
	}

	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(task.Title), term) ||
		strings.Contains(strings.ToLower(task.Description), term)
}
