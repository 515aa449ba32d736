package store

import "time"

// ErrorKind is the stable failure taxonomy a Check's error_kind column is
// restricted to.
type ErrorKind string

const (
	ErrorKindDNS     ErrorKind = "dns"
	ErrorKindConnect ErrorKind = "connect"
	ErrorKindTLS     ErrorKind = "tls"
	ErrorKindTimeout ErrorKind = "timeout"
	ErrorKindHTTP    ErrorKind = "http"
	ErrorKindUnknown ErrorKind = "unknown"
)

// Target is a monitored HTTP(S) endpoint.
type Target struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	URL        string    `db:"url" json:"url"`
	Enabled    bool      `db:"enabled" json:"enabled"`
	IntervalS  int       `db:"interval_s" json:"interval_s"`
	TimeoutS   int       `db:"timeout_s" json:"timeout_s"`
	VerifyTLS  bool      `db:"verify_tls" json:"verify_tls"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Check is the recorded outcome of one probe.
type Check struct {
	ID           string    `db:"id" json:"id"`
	TargetID     string    `db:"target_id" json:"target_id"`
	CheckedAt    time.Time `db:"checked_at" json:"checked_at"`
	Up           bool      `db:"up" json:"up"`
	LatencyMs    *int      `db:"latency_ms" json:"latency_ms"`
	HTTPStatus   *int      `db:"http_status" json:"http_status"`
	ErrorKind    ErrorKind `db:"error_kind" json:"error_kind"`
	ErrorMessage *string   `db:"error_message" json:"error_message"`
}

// TargetWithLastCheck pairs a Target with its most recent check time, or a
// nil time if the target has never been probed. Returned by
// TargetRepository.ListWithLastCheck.
type TargetWithLastCheck struct {
	Target
	LastCheckedAt *time.Time
}
