package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CheckRepository provides inserts and read aggregations over checks.
type CheckRepository struct {
	db *Store
}

// Insert records one probe outcome.
func (r *CheckRepository) Insert(c *Check) error {
	return r.insert(r.db, c)
}

// InsertTx records one probe outcome inside an existing transaction, so the
// scheduler can give every probe its own scoped session.
func (r *CheckRepository) InsertTx(tx *sqlx.Tx, c *Check) error {
	return r.insert(tx, c)
}

func (r *CheckRepository) insert(e sqlx.Ext, c *Check) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO checks (id, target_id, checked_at, up, latency_ms, http_status, error_kind, error_message)
		VALUES (:id, :target_id, :checked_at, :up, :latency_ms, :http_status, :error_kind, :error_message)
	`
	if _, err := sqlx.NamedExec(e, query, c); err != nil {
		return fmt.Errorf("failed to insert check for target %s: %w", c.TargetID, err)
	}
	return nil
}

// latestRow scans the grouped-join form of LatestPerTarget.
type latestRow struct {
	Check
}

// LatestPerTarget returns the most recent check for every target that has
// at least one, keyed by target_id. Targets never probed are simply absent;
// the caller (queryapi) reports them with nil observation fields.
func (r *CheckRepository) LatestPerTarget() (map[string]*Check, error) {
	query := `
		SELECT c.*
		FROM checks c
		INNER JOIN (
			SELECT target_id, MAX(checked_at) AS max_checked_at
			FROM checks
			GROUP BY target_id
		) latest ON latest.target_id = c.target_id AND latest.max_checked_at = c.checked_at
	`
	var rows []latestRow
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to load latest checks: %w", err)
	}

	byTarget := make(map[string]*Check, len(rows))
	for i := range rows {
		c := rows[i].Check
		byTarget[c.TargetID] = &c
	}
	return byTarget, nil
}

// History returns checks since `since`, optionally filtered by target and
// up/down state, newest first. A nil targetID returns checks across every
// target; a nil up returns both up and down checks.
func (r *CheckRepository) History(targetID *string, since time.Time, up *bool) ([]*Check, error) {
	query := "SELECT * FROM checks WHERE checked_at >= ?"
	args := []interface{}{since}

	if targetID != nil {
		query += " AND target_id = ?"
		args = append(args, *targetID)
	}
	if up != nil {
		query += " AND up = ?"
		args = append(args, *up)
	}
	query += " ORDER BY checked_at DESC"

	var checks []*Check
	if err := r.db.Select(&checks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load check history: %w", err)
	}
	return checks, nil
}

// AggregateUptime returns the total number of checks and the number that
// were up for a single target since `since`. The caller computes the
// percentage; total=0 means no checks were recorded in the window.
func (r *CheckRepository) AggregateUptime(targetID string, since time.Time) (total, upCount int, err error) {
	var row struct {
		Total int `db:"total"`
		Up    int `db:"up_count"`
	}
	query := `
		SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN up THEN 1 ELSE 0 END), 0) AS up_count
		FROM checks
		WHERE target_id = ? AND checked_at >= ?
	`
	if err := r.db.Get(&row, query, targetID, since); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate uptime for target %s: %w", targetID, err)
	}
	return row.Total, row.Up, nil
}

// dailyRow scans one UTC calendar-day bucket of the daily uptime query.
type dailyRow struct {
	Day   string `db:"day"`
	Total int    `db:"total"`
	Up    int    `db:"up_count"`
}

// DailyUptime returns, for a single target, the (total, upCount) pair for
// each UTC calendar day between since and now, keyed by "YYYY-MM-DD". Days
// present in the window with no checks are simply absent from the map; the
// caller (queryapi) fills those in as 100.0. Bucketing always uses UTC
// regardless of APP_TIMEZONE, which only affects frontend display.
func (r *CheckRepository) DailyUptime(targetID string, since time.Time) (map[string]struct{ Total, Up int }, error) {
	query := `
		SELECT strftime('%Y-%m-%d', checked_at) AS day,
		       COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN up THEN 1 ELSE 0 END), 0) AS up_count
		FROM checks
		WHERE target_id = ? AND checked_at >= ?
		GROUP BY day
	`
	var rows []dailyRow
	if err := r.db.Select(&rows, query, targetID, since); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily uptime for target %s: %w", targetID, err)
	}

	byDay := make(map[string]struct{ Total, Up int }, len(rows))
	for _, row := range rows {
		byDay[row.Day] = struct{ Total, Up int }{Total: row.Total, Up: row.Up}
	}
	return byDay, nil
}

// DeleteBefore removes every check recorded strictly before cutoff,
// returning the number of rows removed. Used by the retention GC loop.
func (r *CheckRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM checks WHERE checked_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete checks before %s: %w", cutoff, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	return count, nil
}
