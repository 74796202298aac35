// Package engine implements the task synchronization engine: it owns the
// in-memory page of tasks the UI renders, issues filtered and paginated
// queries, applies optimistic mutations with rollback, and merges live change
// notifications into the current view.
//
// All engine state is guarded by one mutex, and notifications are consumed by
// a single goroutine, one event fully processed before the next. Data service
// round trips happen outside the lock, so a fetch racing a mutation can
// overwrite an optimistic patch with a slightly stale page; the notification
// channel converges the view shortly after. Fetches carry no sequence
// numbers: the last response to arrive wins.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayman-93/supabase-task-app/internal/events"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

var (
	// ErrFetchFailed wraps a failed count or data query. The cache is left
	// untouched.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrMutationFailed wraps a create/update/delete/toggle the data service
	// rejected. Optimistic state has been rolled back.
	ErrMutationFailed = errors.New("mutation failed")
	// ErrNotInView is returned when a mutation targets an id absent from the
	// current page. The data service is not contacted.
	ErrNotInView = errors.New("task not in current view")
)

// Human-readable messages surfaced through Snapshot().Error.
const (
	msgFetchFailed  = "Failed to fetch tasks"
	msgCreateFailed = "Failed to create task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
	msgToggleFailed = "Failed to toggle task"
	msgNotFound     = "Task not found"
)

// DataService is the persistence and notification surface the engine
// consumes. dataservice.Client satisfies it.
type DataService interface {
	CountTasks(filter models.TaskFilter) (int64, error)
	QueryTasks(filter models.TaskFilter, sort models.SortOrder, rangeStart, rangeEnd int) ([]models.TaskWithUser, error)
	GetTaskByID(id uint64) (*models.TaskWithUser, error)
	InsertTask(task *models.Task) (*models.Task, error)
	UpdateTask(id uint64, updates models.TaskUpdates) error
	DeleteTask(id uint64) error
	Subscribe() chan events.Change
	Unsubscribe(ch chan events.Change)
}

// Engine is one synchronization engine instance. It is safe for concurrent
// use; every instance subscribes to the data service's change channel on
// construction and must be Closed to release the subscription.
type Engine struct {
	svc    DataService
	userID uint64

	mu         sync.Mutex
	view       ViewState
	tasks      []models.TaskWithUser
	pagination PaginationInfo
	loading    bool
	lastErr    string
	lastChange string

	onChange func()
	changes  chan events.Change
	done     chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnChange registers a callback invoked after every visible state change
// (page replacement, optimistic patch, rollback, merged notification). The
// callback runs without the engine lock held and may read Snapshot.
func WithOnChange(fn func()) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// New creates an engine for the given user identity and view, subscribes to
// the data service's change channel, and starts the merge goroutine. The
// cache starts empty; call Refetch to load the first page.
func New(svc DataService, userID uint64, view ViewState, opts ...Option) *Engine {
	e := &Engine{
		svc:    svc,
		userID: userID,
		view:   view.normalized(),
		tasks:  []models.TaskWithUser{},
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.changes = svc.Subscribe()
	go e.run()

	return e
}

// Close unsubscribes from the change channel and waits for the merge
// goroutine to drain.
func (e *Engine) Close() {
	e.svc.Unsubscribe(e.changes)
	<-e.done
}

// Snapshot is a point-in-time copy of everything the engine exposes to its
// UI collaborator.
type Snapshot struct {
	Tasks      []models.TaskWithUser `json:"tasks"`
	Pagination PaginationInfo        `json:"pagination"`
	IsLoading  bool                  `json:"is_loading"`
	Error      string                `json:"error,omitempty"`
	// LastChangeID is the id of the most recently processed change
	// notification, empty until one arrives. Stream consumers use it as the
	// event id.
	LastChangeID string `json:"last_change_id,omitempty"`
}

// Snapshot returns a copy of the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := make([]models.TaskWithUser, len(e.tasks))
	copy(tasks, e.tasks)

	return Snapshot{
		Tasks:        tasks,
		Pagination:   e.pagination,
		IsLoading:    e.loading,
		Error:        e.lastErr,
		LastChangeID: e.lastChange,
	}
}

// Tasks returns a copy of the current page.
func (e *Engine) Tasks() []models.TaskWithUser {
	return e.Snapshot().Tasks
}

// Pagination returns the current pagination metadata.
func (e *Engine) Pagination() PaginationInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pagination
}

// View returns the active view state.
func (e *Engine) View() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// SetView replaces the view state and refetches.
func (e *Engine) SetView(view ViewState) error {
	e.mu.Lock()
	e.view = view.normalized()
	e.mu.Unlock()

	return e.Refetch()
}

// FetchPage runs one count-clamp-query round against the data service for a
// view: the count request first, informing the page clamp, then the data
// request for the served window. The two requests share one filter.
func FetchPage(svc DataService, view ViewState) ([]models.TaskWithUser, PaginationInfo, error) {
	view = view.normalized()
	filter := view.Filter()

	total, err := svc.CountTasks(filter)
	if err != nil {
		return nil, PaginationInfo{}, fmt.Errorf("count tasks: %w", err)
	}

	page := clampPage(view.Page, pageCount(total, view.PageSize))
	start, end := view.windowFor(page)

	rows, err := svc.QueryTasks(filter, view.SortOrder, start, end)
	if err != nil {
		return nil, PaginationInfo{}, fmt.Errorf("query tasks: %w", err)
	}

	return rows, paginate(page, total, view.PageSize), nil
}

// Refetch loads the current view from the data service. A failure on either
// request leaves the previous cache contents untouched.
func (e *Engine) Refetch() error {
	e.mu.Lock()
	view := e.view
	e.loading = true
	e.mu.Unlock()
	e.notify()

	rows, info, err := FetchPage(e.svc, view)
	if err != nil {
		return e.fetchFailed(err)
	}

	e.mu.Lock()
	e.tasks = rows
	e.pagination = info
	e.loading = false
	e.lastErr = ""
	e.mu.Unlock()
	e.notify()

	return nil
}

func (e *Engine) fetchFailed(err error) error {
	e.mu.Lock()
	e.loading = false
	e.lastErr = msgFetchFailed
	e.mu.Unlock()
	e.notify()

	return fmt.Errorf("%w: %v", ErrFetchFailed, err)
}

// indexOf returns the cache position of a task id, or -1. Callers hold e.mu.
func (e *Engine) indexOf(id uint64) int {
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}
