package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/dataservice"
	"github.com/ayman-93/supabase-task-app/internal/engine"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksSuggested     = errors.New("AI did not suggest any tasks")
)

// TaskService handles task business logic for the REST surface. All
// mutations go through the data service client, so they publish change
// notifications that live views converge on.
type TaskService struct {
	data *dataservice.Client
	ai   *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(data *dataservice.Client, ai *AIService) *TaskService {
	return &TaskService{
		data: data,
		ai:   ai,
	}
}

// ListTasks returns one page of joined rows for a view, with the requested
// page clamped into the available range.
func (s *TaskService) ListTasks(view engine.ViewState) ([]models.TaskWithUser, engine.PaginationInfo, error) {
	rows, info, err := engine.FetchPage(s.data, view)
	if err != nil {
		return nil, engine.PaginationInfo{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	return rows, info, nil
}

// GetTask returns the joined row for one task.
func (s *TaskService) GetTask(id uint64) (*models.TaskWithUser, error) {
	row, err := s.data.GetTaskByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return row, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	CreatorID   uint64
}

// CreateTask validates and creates a task attributed to its creator.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.TaskWithUser, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescriptionRequired
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		CreatedByID: input.CreatorID,
	}

	created, err := s.data.InsertTask(task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(created.ID)
}

// UpdateTask applies a partial update to an existing task.
func (s *TaskService) UpdateTask(id uint64, updates models.TaskUpdates) (*models.TaskWithUser, error) {
	if updates.Title != nil && strings.TrimSpace(*updates.Title) == "" {
		return nil, ErrTitleEmpty
	}

	if err := s.data.UpdateTask(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(id)
}

// DeleteTask deletes a task.
func (s *TaskService) DeleteTask(id uint64) error {
	if err := s.data.DeleteTask(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ToggleTask flips a task's completion state and returns the updated row.
func (s *TaskService) ToggleTask(id uint64) (*models.TaskWithUser, error) {
	current, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	next := !current.IsCompleted
	return s.UpdateTask(id, models.TaskUpdates{IsCompleted: &next})
}

// SuggestTasks uses AI to propose tasks from free text.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.ai == nil {
		return nil, ErrAIServiceNotConfigured
	}

	suggestions, err := s.ai.SuggestTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoTasksSuggested
	}
	if len(suggestions) > constants.MaxSuggestedTasks {
		suggestions = suggestions[:constants.MaxSuggestedTasks]
	}

	valid := make([]SuggestedTask, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if strings.TrimSpace(suggestion.Title) == "" {
			continue
		}
		valid = append(valid, suggestion)
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksSuggested
	}

	return valid, nil
}
