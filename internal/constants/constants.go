package constants

// Session / context keys
const (
	SessionCookieName      = "taskflow_session"
	ContextKeyOperatorID   = "operator_id"
	ContextKeyDepartmentID = "department_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// AI suggestion limits
const MaxSuggestedTasks = 20
