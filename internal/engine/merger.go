package engine

import (
	"github.com/ayman-93/supabase-task-app/internal/events"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// run consumes change notifications in delivery order, one at a time, until
// the subscription channel is closed by Close.
func (e *Engine) run() {
	defer close(e.done)

	for change := range e.changes {
		e.handleChange(change)
	}
}

func (e *Engine) handleChange(change events.Change) {
	e.mu.Lock()
	e.lastChange = change.ID
	e.mu.Unlock()

	switch change.Kind {
	case events.ChangeInsert:
		e.mergeInsert(change.Task.ID)
	case events.ChangeUpdate:
		e.mergeUpdate(change.Task.ID)
	case events.ChangeDelete:
		e.mergeDelete(change.Task.ID)
	}
}

// mergeInsert re-fetches the joined row for a newly created task and, if it
// matches the active filters, places it at the head (newest-first) or tail
// (oldest-first) of the page, re-slicing the page window afterwards. A row
// already present is left alone, which covers the optimistic/notification
// race for the creator's own engine.
func (e *Engine) mergeInsert(id uint64) {
	row, err := e.svc.GetTaskByID(id)
	if err != nil {
		// Recoverable: the cache stays stale until the next fetch or
		// notification corrects it.
		return
	}

	e.mu.Lock()
	view := e.view

	if !view.Filter().Matches(row) {
		e.mu.Unlock()
		return
	}
	if e.indexOf(id) >= 0 {
		e.mu.Unlock()
		return
	}

	var extended []models.TaskWithUser
	if view.SortOrder == models.SortOldest {
		extended = append(append(extended, e.tasks...), *row)
	} else {
		extended = append(append(extended, *row), e.tasks...)
	}

	start, end := view.windowFor(view.Page)
	e.tasks = sliceWindow(extended, start, end+1)
	e.pagination.TotalCount++
	e.recomputePages(view)
	e.mu.Unlock()
	e.notify()
}

// mergeUpdate re-fetches the joined row for a changed task. A row that no
// longer satisfies the active filters leaves the view and the count; a row
// still in view is replaced in place; a row on another page is left alone.
func (e *Engine) mergeUpdate(id uint64) {
	row, err := e.svc.GetTaskByID(id)
	if err != nil {
		// Also covers a row deleted between the event and the re-fetch; the
		// delete notification will follow.
		return
	}

	e.mu.Lock()
	view := e.view
	idx := e.indexOf(id)

	if !view.Filter().Matches(row) {
		if idx >= 0 {
			e.tasks = append(e.tasks[:idx], e.tasks[idx+1:]...)
		}
		if e.pagination.TotalCount > 0 {
			e.pagination.TotalCount--
		}
		e.recomputePages(view)
		e.mu.Unlock()
		e.notify()
		return
	}

	if idx < 0 {
		e.mu.Unlock()
		return
	}

	e.tasks[idx] = *row
	e.mu.Unlock()
	e.notify()
}

// mergeDelete removes the entry by id if present and adjusts the counts.
func (e *Engine) mergeDelete(id uint64) {
	e.mu.Lock()
	view := e.view

	if idx := e.indexOf(id); idx >= 0 {
		e.tasks = append(e.tasks[:idx], e.tasks[idx+1:]...)
	}
	if e.pagination.TotalCount > 0 {
		e.pagination.TotalCount--
	}
	e.recomputePages(view)
	e.mu.Unlock()
	e.notify()
}

// recomputePages refreshes the derived pagination fields from the latest
// TotalCount. Callers hold e.mu.
func (e *Engine) recomputePages(view ViewState) {
	pages := pageCount(e.pagination.TotalCount, view.PageSize)
	e.pagination.TotalPages = pages
	e.pagination.PageSize = view.PageSize
	if e.pagination.CurrentPage < 1 {
		e.pagination.CurrentPage = view.Page
	}
	e.pagination.HasNextPage = e.pagination.CurrentPage < pages
	e.pagination.HasPrevPage = e.pagination.CurrentPage > 1
}

// sliceWindow slices [start, end) of the conceptually extended list, clamped
// to its bounds.
func sliceWindow(list []models.TaskWithUser, start, end int) []models.TaskWithUser {
	if start > len(list) {
		start = len(list)
	}
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
