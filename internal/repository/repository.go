package repository

import (
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a bare task row by ID
	FindByID(id uint64) (*models.Task, error)

	// FindWithCreator finds a task joined with its creator's identity
	FindWithCreator(id uint64) (*models.TaskWithUser, error)

	// Count returns the number of tasks matching the filter
	Count(filter models.TaskFilter) (int64, error)

	// List retrieves the joined rows matching the filter, ordered by
	// created_at per sort, windowed to the inclusive range [rangeStart, rangeEnd]
	List(filter models.TaskFilter, sort models.SortOrder, rangeStart, rangeEnd int) ([]models.TaskWithUser, error)

	// Update applies a partial update and returns the updated row
	Update(id uint64, updates models.TaskUpdates) (*models.Task, error)

	// Delete soft deletes a task and returns the row as it was
	Delete(id uint64) (*models.Task, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
