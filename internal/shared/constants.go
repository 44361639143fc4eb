package shared

// Context keys set by middleware and read by handlers.
const (
	ContextUserIDKey = "user_id"
	ContextLoggerKey = "logger"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
