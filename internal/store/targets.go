package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TargetRepository provides CRUD and scheduling queries over targets.
type TargetRepository struct {
	db *Store
}

// Create inserts a new target, assigning it a UUID if one isn't already set.
func (r *TargetRepository) Create(t *Target) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO targets (id, name, url, enabled, interval_s, timeout_s, verify_tls)
		VALUES (:id, :name, :url, :enabled, :interval_s, :timeout_s, :verify_tls)
	`
	if _, err := r.db.NamedExec(query, t); err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}
	return r.refresh(t)
}

// refresh reloads created_at/updated_at after an insert or update so the
// caller observes the same values a subsequent GET would.
func (r *TargetRepository) refresh(t *Target) error {
	fresh, err := r.GetByID(t.ID)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// GetByID fetches a single target.
func (r *TargetRepository) GetByID(id string) (*Target, error) {
	var t Target
	if err := r.db.Get(&t, "SELECT * FROM targets WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get target %s: %w", id, err)
	}
	return &t, nil
}

// Update applies a partial update. Zero-value fields from a PATCH request
// must already be merged onto t by the caller before calling Update.
func (r *TargetRepository) Update(t *Target) error {
	query := `
		UPDATE targets
		SET name = :name, url = :url, enabled = :enabled,
		    interval_s = :interval_s, timeout_s = :timeout_s, verify_tls = :verify_tls
		WHERE id = :id
	`
	result, err := r.db.NamedExec(query, t)
	if err != nil {
		return fmt.Errorf("failed to update target %s: %w", t.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("target %s not found", t.ID)
	}
	return r.refresh(t)
}

// Delete removes a target; ON DELETE CASCADE removes its checks.
func (r *TargetRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM targets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete target %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("target %s not found", id)
	}
	return nil
}

// List returns every target, enabled or not, ordered by creation time.
func (r *TargetRepository) List() ([]*Target, error) {
	var targets []*Target
	err := r.db.Select(&targets, "SELECT * FROM targets ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	return targets, nil
}

// ListEnabled returns only enabled targets.
func (r *TargetRepository) ListEnabled() ([]*Target, error) {
	var targets []*Target
	err := r.db.Select(&targets, "SELECT * FROM targets WHERE enabled = 1 ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled targets: %w", err)
	}
	return targets, nil
}

// dueRow mirrors targets' columns plus the grouped max(checked_at), for
// scanning the due-target query directly with sqlx.
type dueRow struct {
	Target
	LastCheckedAt *time.Time `db:"last_checked_at"`
}

// ListDue returns enabled targets whose next probe is due at `now`: either
// they have never been checked, or the elapsed time since their last check
// is at least their configured interval. The predicate is pushed entirely
// into SQL via a single grouped LEFT JOIN, rather than loading every
// enabled target and filtering in Go.
func (r *TargetRepository) ListDue(now time.Time) ([]*Target, error) {
	query := `
		SELECT t.*, MAX(c.checked_at) AS last_checked_at
		FROM targets t
		LEFT JOIN checks c ON c.target_id = t.id
		WHERE t.enabled = 1
		GROUP BY t.id
		HAVING last_checked_at IS NULL
		    OR (CAST(? AS INTEGER) - CAST(strftime('%s', last_checked_at) AS INTEGER)) >= t.interval_s
	`
	var rows []dueRow
	if err := r.db.Select(&rows, query, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to list due targets: %w", err)
	}

	due := make([]*Target, 0, len(rows))
	for i := range rows {
		t := rows[i].Target
		due = append(due, &t)
	}
	return due, nil
}

// ListWithLastCheck pairs every enabled target with its last-checked
// timestamp (nil if never checked).
func (r *TargetRepository) ListWithLastCheck() ([]*TargetWithLastCheck, error) {
	query := `
		SELECT t.*, MAX(c.checked_at) AS last_checked_at
		FROM targets t
		LEFT JOIN checks c ON c.target_id = t.id
		WHERE t.enabled = 1
		GROUP BY t.id
		ORDER BY t.created_at ASC
	`
	var rows []dueRow
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list targets with last check: %w", err)
	}

	result := make([]*TargetWithLastCheck, 0, len(rows))
	for i := range rows {
		result = append(result, &TargetWithLastCheck{
			Target:        rows[i].Target,
			LastCheckedAt: rows[i].LastCheckedAt,
		})
	}
	return result, nil
}
