package constants

// Session and context keys
const (
	SessionCookieName   = "todolist_session"
	ContextKeyUserID    = "user_id"
	ContextKeyTaskID    = "task_id"
	ContextKeyRequestID = "request_id"
)

// Account constraints
const (
	MinPasswordLength   = 8
	MinUsernameLength   = 3
	MaxUsernameLength   = 50
	MaxPersonNameLength = 150
)

// Field lengths shared by validation and the schema
const (
	MaxTeamNameLength        = 64
	MaxTaskNameLength        = 64
	MaxTaskDescriptionLength = 128
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxAIGeneratedTasks caps how many drafts a single suggestion request returns.
const MaxAIGeneratedTasks = 20
