package model

import "time"

const (
	// Action types; the audit log records login attempts only.
	AuditActionLogin       = "LOGIN"
	AuditActionLoginFailed = "LOGIN_FAILED"
)

// Listing caps. Requests beyond these are clamped, not rejected.
const (
	AuditListMaxLimit   = 100
	AuditRecentMaxLimit = 50
	AuditExportMaxRows  = 10000
)

// AuditLog is one append-only row per login attempt. Rows are never
// updated; only full-access administrators may delete them.
type AuditLog struct {
	LogID      int64     `json:"log_id" db:"log_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	UserID     int64     `json:"user_id" db:"user_id"`
	UserRole   Role      `json:"user_role" db:"user_role"`
	ActionType string    `json:"action_type" db:"action_type"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined read-only field
	UserName string `json:"user_name,omitempty" db:"user_name"`
}

// AuditFilter narrows audit queries. Zero values mean "no filter".
type AuditFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	UserRole   Role
	ActionType string
	Limit      int
	Offset     int
}

// AuditPage is a paginated listing.
type AuditPage struct {
	Logs       []*AuditLog `json:"logs"`
	Pagination PageInfo    `json:"pagination"`
}

// AuditStats aggregates login activity.
type AuditStats struct {
	TotalLogs        int64          `json:"total_logs"`
	LoginAttempts    int64          `json:"login_attempts"`
	SuccessfulLogins int64          `json:"successful_logins"`
	FailedLogins     int64          `json:"failed_logins"`
	UniqueUsers      int64          `json:"unique_users"`
	ActivityByRole   map[string]int `json:"activity_by_role"`
	ActivityByHour   map[int]int    `json:"activity_by_hour"`
	Last24hActivity  int64          `json:"last_24h_activity"`
}
