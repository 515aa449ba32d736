package store

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh in-memory database with the schema applied,
// for use by this package's tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAndHealthCheck(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.HealthCheck())
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)

	err := s.WithTx(func(tx *sqlx.Tx) error {
		_, execErr := tx.Exec(
			`INSERT INTO targets (id, name, url, enabled, interval_s, timeout_s, verify_tls) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"fixed-id", "example", "https://example.com", true, 60, 5, true,
		)
		return execErr
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.Get(&count, "SELECT COUNT(*) FROM targets WHERE id = ?", "fixed-id"))
	require.Equal(t, 1, count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	sentinel := errors.New("boom")

	err := s.WithTx(func(tx *sqlx.Tx) error {
		_, execErr := tx.Exec(
			`INSERT INTO targets (id, name, url, enabled, interval_s, timeout_s, verify_tls) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"rolled-back-id", "example", "https://example.com", true, 60, 5, true,
		)
		if execErr != nil {
			return execErr
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, s.Get(&count, "SELECT COUNT(*) FROM targets WHERE id = ?", "rolled-back-id"))
	require.Equal(t, 0, count)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)

	require.Panics(t, func() {
		_ = s.WithTx(func(tx *sqlx.Tx) error {
			_, _ = tx.Exec(
				`INSERT INTO targets (id, name, url, enabled, interval_s, timeout_s, verify_tls) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				"panicked-id", "example", "https://example.com", true, 60, 5, true,
			)
			panic("boom")
		})
	})

	var count int
	require.NoError(t, s.Get(&count, "SELECT COUNT(*) FROM targets WHERE id = ?", "panicked-id"))
	require.Equal(t, 0, count)
}
