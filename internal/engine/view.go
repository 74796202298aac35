package engine

import (
	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// ViewState is the combination of search term, sort order, completion filter,
// and pagination parameters that determines what the cache should contain.
// It is owned by the UI layer; the engine only reads it.
type ViewState struct {
	SearchTerm       string                  `json:"search_term"`
	SortOrder        models.SortOrder        `json:"sort_order"`
	CompletionFilter models.CompletionFilter `json:"completion_filter"`
	Page             int                     `json:"page"`
	PageSize         int                     `json:"page_size"`
}

// normalized fills in defaults so the engine can tolerate arbitrary view
// resets from the composing layer.
func (v ViewState) normalized() ViewState {
	if v.SortOrder != models.SortOldest {
		v.SortOrder = models.SortNewest
	}
	switch v.CompletionFilter {
	case models.FilterActive, models.FilterCompleted:
	default:
		v.CompletionFilter = models.FilterAll
	}
	if v.Page < constants.MinPage {
		v.Page = constants.MinPage
	}
	if v.PageSize <= 0 {
		v.PageSize = constants.DefaultPageSize
	}
	if v.PageSize > constants.MaxPageSize {
		v.PageSize = constants.MaxPageSize
	}
	return v
}

// Filter returns the filter portion of the view, shared by the count request
// and the data request.
func (v ViewState) Filter() models.TaskFilter {
	return models.TaskFilter{
		Completion: v.CompletionFilter,
		Search:     v.SearchTerm,
	}
}

// windowFor returns the inclusive row range for a page of this view.
func (v ViewState) windowFor(page int) (start, end int) {
	start = (page - 1) * v.PageSize
	end = page*v.PageSize - 1
	return start, end
}
