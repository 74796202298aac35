package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ayman-93/supabase-task-app/internal/database"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// joinedColumns selects the task columns plus the creator identity columns
// that make up the TaskWithUser read model.
const joinedColumns = "tasks.id, tasks.title, tasks.description, tasks.is_completed, " +
	"tasks.created_by_id, tasks.created_at, " +
	"users.first_name AS creator_first_name, users.last_name AS creator_last_name, " +
	"users.email AS creator_email"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a bare task row by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindWithCreator finds a task joined with its creator's identity
func (r *GormTaskRepository) FindWithCreator(id uint64) (*models.TaskWithUser, error) {
	var row models.TaskWithUser
	err := r.db.Model(&models.Task{}).
		Select(joinedColumns).
		Joins("JOIN users ON users.id = tasks.created_by_id").
		Where("tasks.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Count returns the number of tasks matching the filter
func (r *GormTaskRepository) Count(filter models.TaskFilter) (int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// List retrieves the joined rows matching the filter, ordered and windowed
func (r *GormTaskRepository) List(filter models.TaskFilter, sort models.SortOrder, rangeStart, rangeEnd int) ([]models.TaskWithUser, error) {
	order := "tasks.created_at DESC"
	if sort == models.SortOldest {
		order = "tasks.created_at ASC"
	}

	rows := []models.TaskWithUser{}
	err := r.filtered(filter).
		Select(joinedColumns).
		Joins("JOIN users ON users.id = tasks.created_by_id").
		Order(order).
		Scopes(database.RangeWindow(rangeStart, rangeEnd)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Update applies a partial update and returns the updated row
func (r *GormTaskRepository) Update(id uint64, updates models.TaskUpdates) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.IsCompleted != nil {
		fields["is_completed"] = *updates.IsCompleted
	}

	if len(fields) > 0 {
		if err := r.db.Model(&task).Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	return &task, nil
}

// Delete soft deletes a task and returns the row as it was
func (r *GormTaskRepository) Delete(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}

	if err := r.db.Delete(&models.Task{}, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// filtered builds the query shared by Count and List
func (r *GormTaskRepository) filtered(filter models.TaskFilter) *gorm.DB {
	query := r.db.Model(&models.Task{})

	switch filter.Completion {
	case models.FilterActive:
		query = query.Where("tasks.is_completed = ?", false)
	case models.FilterCompleted:
		query = query.Where("tasks.is_completed = ?", true)
	}

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", term, term)
	}

	return query
}
