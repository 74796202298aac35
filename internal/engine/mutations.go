package engine

import (
	"fmt"

	"github.com/ayman-93/supabase-task-app/internal/models"
)

// AddTask creates a task attributed to the engine's user identity. The new
// row is not inserted optimistically; it reaches the cache through the insert
// notification, which also guards against a duplicate entry.
func (e *Engine) AddTask(title, description string) error {
	task := &models.Task{
		Title:       title,
		Description: description,
		CreatedByID: e.userID,
	}

	if _, err := e.svc.InsertTask(task); err != nil {
		e.setError(msgCreateFailed)
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	return nil
}

// UpdateTask optimistically patches the cached entry, sends the update, and
// on failure restores the snapshot captured before the patch.
func (e *Engine) UpdateTask(id uint64, updates models.TaskUpdates) error {
	return e.optimistic(id, msgUpdateFailed,
		func(task *models.TaskWithUser) {
			if updates.Title != nil {
				task.Title = *updates.Title
			}
			if updates.Description != nil {
				task.Description = *updates.Description
			}
			if updates.IsCompleted != nil {
				task.IsCompleted = *updates.IsCompleted
			}
		},
		func() error { return e.svc.UpdateTask(id, updates) },
	)
}

// ToggleTask optimistically flips completion to !currentIsCompleted. On
// failure it restores the value the caller passed in, not the cache snapshot,
// so the caller's view of "current" is the rollback target even when a
// notification changed the cached entry between the caller's read and the
// call.
func (e *Engine) ToggleTask(id uint64, currentIsCompleted bool) error {
	next := !currentIsCompleted

	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.lastErr = msgNotFound
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: task %d", ErrNotInView, id)
	}
	e.tasks[idx].IsCompleted = next
	e.mu.Unlock()
	e.notify()

	if err := e.svc.UpdateTask(id, models.TaskUpdates{IsCompleted: &next}); err != nil {
		e.mu.Lock()
		if i := e.indexOf(id); i >= 0 {
			e.tasks[i].IsCompleted = currentIsCompleted
		}
		e.lastErr = msgToggleFailed
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	return nil
}

// DeleteTask optimistically removes the cached entry, sends the delete, and
// on failure re-inserts the removed snapshot at its prior position. Counts
// are not touched here; the delete notification adjusts them.
func (e *Engine) DeleteTask(id uint64) error {
	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.lastErr = msgNotFound
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: task %d", ErrNotInView, id)
	}

	snapshot := e.tasks[idx]
	e.tasks = append(e.tasks[:idx], e.tasks[idx+1:]...)
	e.mu.Unlock()
	e.notify()

	if err := e.svc.DeleteTask(id); err != nil {
		e.mu.Lock()
		pos := idx
		if pos > len(e.tasks) {
			pos = len(e.tasks)
		}
		rest := append([]models.TaskWithUser{snapshot}, e.tasks[pos:]...)
		e.tasks = append(e.tasks[:pos], rest...)
		e.lastErr = msgDeleteFailed
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	return nil
}

// optimistic is the shared apply-then-confirm-or-rollback wrapper: it
// captures a snapshot of the targeted entry, applies the mutation in place,
// runs the remote call outside the lock, and restores the snapshot if the
// call fails. Targeting an id absent from the cache fails locally without a
// round trip.
func (e *Engine) optimistic(id uint64, failMsg string, mutate func(*models.TaskWithUser), remote func() error) error {
	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.lastErr = msgNotFound
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: task %d", ErrNotInView, id)
	}

	snapshot := e.tasks[idx]
	mutate(&e.tasks[idx])
	e.mu.Unlock()
	e.notify()

	if err := remote(); err != nil {
		e.mu.Lock()
		if i := e.indexOf(id); i >= 0 {
			e.tasks[i] = snapshot
		}
		e.lastErr = failMsg
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	return nil
}

func (e *Engine) setError(msg string) {
	e.mu.Lock()
	e.lastErr = msg
	e.mu.Unlock()
	e.notify()
}
