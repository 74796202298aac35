// Package dataservice exposes the persistence and notification surface the
// rest of the application programs against: filtered counts and queries over
// the joined task read model, row mutations, and a live channel of change
// notifications. Mutations publish their change on the bus after the write
// succeeds, so every subscriber observes changes in commit order.
package dataservice

import (
	"github.com/ayman-93/supabase-task-app/internal/events"
	"github.com/ayman-93/supabase-task-app/internal/models"
	"github.com/ayman-93/supabase-task-app/internal/repository"
)

// Client is the concrete data service, backed by a task repository and an
// in-process change bus. Construct one per process and pass it by reference;
// all consumers (REST handlers, sync engines) share it.
type Client struct {
	tasks repository.TaskRepository
	bus   *events.Bus
}

// NewClient creates a data service client over the given repository and bus.
func NewClient(tasks repository.TaskRepository, bus *events.Bus) *Client {
	return &Client{
		tasks: tasks,
		bus:   bus,
	}
}

// CountTasks returns the number of tasks matching the filter.
func (c *Client) CountTasks(filter models.TaskFilter) (int64, error) {
	return c.tasks.Count(filter)
}

// QueryTasks returns one page of joined rows matching the filter, ordered by
// created_at per sort, windowed to the inclusive range [rangeStart, rangeEnd].
func (c *Client) QueryTasks(filter models.TaskFilter, sort models.SortOrder, rangeStart, rangeEnd int) ([]models.TaskWithUser, error) {
	return c.tasks.List(filter, sort, rangeStart, rangeEnd)
}

// GetTaskByID returns the joined row for one task.
func (c *Client) GetTaskByID(id uint64) (*models.TaskWithUser, error) {
	return c.tasks.FindWithCreator(id)
}

// InsertTask creates a task and publishes an insert notification.
func (c *Client) InsertTask(task *models.Task) (*models.Task, error) {
	if err := c.tasks.Create(task); err != nil {
		return nil, err
	}

	c.bus.Publish(events.ChangeInsert, *task)
	return task, nil
}

// UpdateTask applies a partial update and publishes an update notification.
func (c *Client) UpdateTask(id uint64, updates models.TaskUpdates) error {
	task, err := c.tasks.Update(id, updates)
	if err != nil {
		return err
	}

	c.bus.Publish(events.ChangeUpdate, *task)
	return nil
}

// DeleteTask deletes a task and publishes a delete notification carrying the
// row as it was before deletion.
func (c *Client) DeleteTask(id uint64) error {
	task, err := c.tasks.Delete(id)
	if err != nil {
		return err
	}

	c.bus.Publish(events.ChangeDelete, *task)
	return nil
}

// Subscribe returns a channel of task change notifications, delivered in
// publish order.
func (c *Client) Subscribe() chan events.Change {
	return c.bus.Subscribe()
}

// Unsubscribe tears down a subscription and closes its channel.
func (c *Client) Unsubscribe(ch chan events.Change) {
	c.bus.Unsubscribe(ch)
}
