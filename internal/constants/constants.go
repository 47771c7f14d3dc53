package constants

import "time"

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"
	ContextKeyAccess    = "project_access"
	ContextKeyTask      = "task"
)

// HeaderRequestID is echoed on every response
const HeaderRequestID = "X-Request-ID"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Aggregation windows
const (
	RecentTaskWindow     = 7 * 24 * time.Hour
	UpcomingDeadlineDays = 14
	DashboardListLimit   = 10
)

const (
	MaxUserSearchResults = 20
	MaxBulkMembers       = 50
	MaxBulkProjectDelete = 100
)

// Notification dispatch
const (
	MailSendTimeout = 30 * time.Second
)

// DateLayout is the wire format for date-only fields
const DateLayout = "2006-01-02"
