package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayman-93/supabase-task-app/internal/constants"
	apierrors "github.com/ayman-93/supabase-task-app/internal/errors"
	"github.com/ayman-93/supabase-task-app/internal/models"
	"github.com/ayman-93/supabase-task-app/internal/services"
)

// RequireTask parses the :id parameter, loads the joined row, and stores it
// in the request context for the handler.
func RequireTask(taskService *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		task, err := taskService.GetTask(taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTask from context
func GetTask(c *gin.Context) (models.TaskWithUser, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.TaskWithUser{}, false
	}

	task, ok := value.(models.TaskWithUser)
	return task, ok
}
