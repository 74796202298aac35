package dto

import (
	"github.com/ayman-93/supabase-task-app/internal/engine"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []models.TaskWithUser `json:"tasks"`
	Pagination engine.PaginationInfo `json:"pagination"`
}

// ToTaskListResponse builds the list payload from a served page
func ToTaskListResponse(tasks []models.TaskWithUser, pagination engine.PaginationInfo) TaskListResponse {
	if tasks == nil {
		tasks = []models.TaskWithUser{}
	}
	return TaskListResponse{
		Tasks:      tasks,
		Pagination: pagination,
	}
}
