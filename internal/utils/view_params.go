package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/engine"
	"github.com/ayman-93/supabase-task-app/internal/models"
)

// GetViewState extracts and validates the view parameters from the request.
// Unknown sort/filter values fall back to the defaults inside the engine.
func GetViewState(c *gin.Context) engine.ViewState {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}

	return engine.ViewState{
		SearchTerm:       c.Query("search"),
		SortOrder:        models.SortOrder(c.DefaultQuery("sort", string(models.SortNewest))),
		CompletionFilter: models.CompletionFilter(c.DefaultQuery("filter", string(models.FilterAll))),
		Page:             page,
		PageSize:         pageSize,
	}
}
