package api

import "time"

// TargetResponse is the JSON shape of a Target, returned from every targets
// endpoint. URL is masked by the handler for unauthenticated reads when
// auth is enabled.
type TargetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	IntervalS int       `json:"interval_s"`
	TimeoutS  int       `json:"timeout_s"`
	VerifyTLS bool      `json:"verify_tls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTargetRequest validates a target creation body via gin binding
// tags; out-of-range fields fail binding and map to 422. Omitted optional
// fields fall back to enabled=true, interval_s=60, timeout_s=10,
// verify_tls=true. The tags use omitnil rather than omitempty so an
// explicit zero still fails range validation.
type CreateTargetRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	URL       string `json:"url" binding:"required,max=2048,url"`
	Enabled   *bool  `json:"enabled"`
	IntervalS *int   `json:"interval_s" binding:"omitnil,min=10,max=3600"`
	TimeoutS  *int   `json:"timeout_s" binding:"omitnil,min=1,max=30"`
	VerifyTLS *bool  `json:"verify_tls"`
}

// UpdateTargetRequest is a partial update: every field is optional, and only
// non-nil fields are applied.
type UpdateTargetRequest struct {
	Name      *string `json:"name" binding:"omitnil,min=1,max=255"`
	URL       *string `json:"url" binding:"omitnil,max=2048,url"`
	Enabled   *bool   `json:"enabled"`
	IntervalS *int    `json:"interval_s" binding:"omitnil,min=10,max=3600"`
	TimeoutS  *int    `json:"timeout_s" binding:"omitnil,min=1,max=30"`
	VerifyTLS *bool   `json:"verify_tls"`
}

// StatusResponse is one row of GET /api/status.
type StatusResponse struct {
	TargetID     string     `json:"target_id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Up           *bool      `json:"up"`
	LastChecked  *time.Time `json:"last_checked"`
	LatencyMs    *int       `json:"latency_ms"`
	HTTPStatus   *int       `json:"http_status"`
	ErrorType    *string    `json:"error_type"`
	ErrorMessage *string    `json:"error_message"`
}

// CheckResponse is the JSON shape of a Check, returned from history
// endpoints.
type CheckResponse struct {
	ID           string    `json:"id"`
	TargetID     string    `json:"target_id"`
	CheckedAt    time.Time `json:"checked_at"`
	Up           bool      `json:"up"`
	LatencyMs    *int      `json:"latency_ms"`
	HTTPStatus   *int      `json:"http_status"`
	ErrorType    string    `json:"error_type"`
	ErrorMessage *string   `json:"error_message"`
}

// UptimeResponse is the body of GET /api/targets/{id}/uptime.
type UptimeResponse struct {
	TargetID         string  `json:"target_id"`
	Name             string  `json:"name"`
	UptimePercentage float64 `json:"uptime_percentage"`
	TotalChecks      int     `json:"total_checks"`
	UpChecks         int     `json:"up_checks"`
	DownChecks       int     `json:"down_checks"`
}

// DailyUptimeResponse is one entry of GET /api/targets/{id}/daily.
type DailyUptimeResponse struct {
	Day              string  `json:"day"`
	TotalChecks      int     `json:"total_checks"`
	UpChecks         int     `json:"up_checks"`
	UptimePercentage float64 `json:"uptime_percentage"`
}

// ConfigResponse is the body of GET /api/config.
type ConfigResponse struct {
	AppTimezone string `json:"app_timezone"`
}

// AuthStatusResponse is the body of GET /api/auth/me and a successful
// POST /api/auth/login.
type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
	AuthEnabled   bool `json:"auth_enabled"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
