package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/dataservice"
	"github.com/ayman-93/supabase-task-app/internal/events"
	"github.com/ayman-93/supabase-task-app/internal/middleware"
	"github.com/ayman-93/supabase-task-app/internal/models"
	"github.com/ayman-93/supabase-task-app/internal/repository"
	"github.com/ayman-93/supabase-task-app/internal/services"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	user   models.User
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	suite.user = models.User{
		Email:        "owner@example.com",
		FirstName:    "Olive",
		LastName:     "Owner",
		PasswordHash: "not-a-real-hash",
	}
	suite.Require().NoError(db.Create(&suite.user).Error)

	client := dataservice.NewClient(repository.NewTaskRepository(db), events.NewBus())
	taskService := services.NewTaskService(client, nil)
	handler := NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, suite.user.ID)
		c.Next()
	})

	tasks := router.Group("/api/tasks")
	{
		tasks.GET("", handler.ListTasks)
		tasks.POST("", handler.CreateTask)
		tasks.POST("/suggest", handler.SuggestTasks)

		single := tasks.Group("/:id")
		single.Use(middleware.RequireTask(taskService))
		{
			single.GET("", handler.GetTask)
			single.PATCH("", handler.UpdateTask)
			single.DELETE("", handler.DeleteTask)
			single.POST("/toggle", handler.ToggleTask)
		}
	}

	suite.router = router
}

func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// seedTasks inserts n tasks with strictly increasing creation times so the
// newest-first ordering is unambiguous.
func (suite *TaskHandlerTestSuite) seedTasks(n int, completed func(i int) bool) []models.Task {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := make([]models.Task, 0, n)
	for i := 1; i <= n; i++ {
		task := models.Task{
			Title:       fmt.Sprintf("Task %d", i),
			Description: fmt.Sprintf("Description %d", i),
			IsCompleted: completed(i),
			CreatedByID: suite.user.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		suite.Require().NoError(suite.db.Create(&task).Error)
		created = append(created, task)
	}
	return created
}

func (suite *TaskHandlerTestSuite) do(method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Tasks      []models.TaskWithUser `json:"tasks"`
	Pagination struct {
		CurrentPage int   `json:"current_page"`
		TotalPages  int   `json:"total_pages"`
		TotalCount  int64 `json:"total_count"`
		HasNextPage bool  `json:"has_next_page"`
		HasPrevPage bool  `json:"has_prev_page"`
	} `json:"pagination"`
}

func (suite *TaskHandlerTestSuite) decodeList(w *httptest.ResponseRecorder) listResponse {
	var response listResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *TaskHandlerTestSuite) TestListTasks_FirstPageNewestFirst() {
	suite.seedTasks(7, func(i int) bool { return false })

	w := suite.do("GET", "/api/tasks?page_size=5", nil)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decodeList(w)
	suite.Len(response.Tasks, 5)
	suite.Equal("Task 7", response.Tasks[0].Title)
	suite.Equal("Task 3", response.Tasks[4].Title)
	suite.Equal("Olive", response.Tasks[0].CreatorFirstName)
	suite.Equal(int64(7), response.Pagination.TotalCount)
	suite.Equal(2, response.Pagination.TotalPages)
	suite.True(response.Pagination.HasNextPage)
	suite.False(response.Pagination.HasPrevPage)
}

func (suite *TaskHandlerTestSuite) TestListTasks_SearchIsCaseInsensitive() {
	suite.seedTasks(3, func(i int) bool { return false })

	w := suite.do("GET", "/api/tasks?search=TASK+2", nil)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decodeList(w)
	suite.Len(response.Tasks, 1)
	suite.Equal("Task 2", response.Tasks[0].Title)
	suite.Equal(int64(1), response.Pagination.TotalCount)
}

func (suite *TaskHandlerTestSuite) TestListTasks_CompletionFilter() {
	suite.seedTasks(4, func(i int) bool { return i%2 == 0 })

	w := suite.do("GET", "/api/tasks?filter=completed", nil)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decodeList(w)
	suite.Len(response.Tasks, 2)
	for _, task := range response.Tasks {
		suite.True(task.IsCompleted)
	}
}

func (suite *TaskHandlerTestSuite) TestListTasks_PageClampedIntoRange() {
	suite.seedTasks(6, func(i int) bool { return false })

	w := suite.do("GET", "/api/tasks?page=99&page_size=5", nil)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decodeList(w)
	suite.Equal(2, response.Pagination.CurrentPage)
	suite.Len(response.Tasks, 1)
	suite.Equal("Task 1", response.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_EmptyResultIsNotNull() {
	w := suite.do("GET", "/api/tasks", nil)
	suite.Equal(http.StatusOK, w.Code)

	suite.Contains(w.Body.String(), `"tasks":[]`)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	w := suite.do("POST", "/api/tasks", map[string]string{
		"title":       "Write release notes",
		"description": "Cover the pagination changes",
	})
	suite.Equal(http.StatusCreated, w.Code)

	var created models.TaskWithUser
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal("Write release notes", created.Title)
	suite.Equal(suite.user.ID, created.CreatedByID)
	suite.Equal("owner@example.com", created.CreatorEmail)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingDescription() {
	w := suite.do("POST", "/api/tasks", map[string]string{
		"title": "No description",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	tasks := suite.seedTasks(1, func(i int) bool { return false })

	w := suite.do("GET", fmt.Sprintf("/api/tasks/%d", tasks[0].ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var task models.TaskWithUser
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	suite.Equal(tasks[0].ID, task.ID)
	suite.Equal("Owner", task.CreatorLastName)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	w := suite.do("GET", "/api/tasks/12345", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_InvalidID() {
	w := suite.do("GET", "/api/tasks/not-a-number", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_PartialUpdate() {
	tasks := suite.seedTasks(1, func(i int) bool { return false })

	w := suite.do("PATCH", fmt.Sprintf("/api/tasks/%d", tasks[0].ID), map[string]string{
		"title": "Renamed",
	})
	suite.Equal(http.StatusOK, w.Code)

	var updated models.TaskWithUser
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("Renamed", updated.Title)
	suite.Equal("Description 1", updated.Description)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_EmptyTitleRejected() {
	tasks := suite.seedTasks(1, func(i int) bool { return false })

	w := suite.do("PATCH", fmt.Sprintf("/api/tasks/%d", tasks[0].ID), map[string]string{
		"title": "   ",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	w := suite.do("PATCH", "/api/tasks/12345", map[string]string{"title": "Renamed"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	tasks := suite.seedTasks(1, func(i int) bool { return false })

	w := suite.do("DELETE", fmt.Sprintf("/api/tasks/%d", tasks[0].ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	after := suite.do("GET", fmt.Sprintf("/api/tasks/%d", tasks[0].ID), nil)
	suite.Equal(http.StatusNotFound, after.Code)
}

func (suite *TaskHandlerTestSuite) TestToggleTask_FlipsCompletion() {
	tasks := suite.seedTasks(1, func(i int) bool { return false })

	w := suite.do("POST", fmt.Sprintf("/api/tasks/%d/toggle", tasks[0].ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var toggled models.TaskWithUser
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &toggled))
	suite.True(toggled.IsCompleted)

	again := suite.do("POST", fmt.Sprintf("/api/tasks/%d/toggle", tasks[0].ID), nil)
	suite.Equal(http.StatusOK, again.Code)
	suite.Require().NoError(json.Unmarshal(again.Body.Bytes(), &toggled))
	suite.False(toggled.IsCompleted)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_NotConfigured() {
	w := suite.do("POST", "/api/tasks/suggest", map[string]string{
		"text": "Buy milk and call the dentist",
	})
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
