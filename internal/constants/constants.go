package constants

// Context keys set by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxAIGeneratedTasks caps how many task suggestions a single AI drafting
// call may return.
const MaxAIGeneratedTasks = 20
