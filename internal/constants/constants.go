package constants

// Session and context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyTask   = "task"
	SessionName      = "task_session"
)

// Pagination limits
const (
	MinPage         = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// AI suggestion limits
const (
	MaxSuggestedTasks = 10
)
