// Package store is the durable persistence layer for targets and checks:
// transactional sessions, indexed queries, and the retention delete. It
// wraps jmoiron/sqlx over the pure-Go modernc.org/sqlite driver.
package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a *sqlx.DB connection pool.
type Store struct {
	*sqlx.DB
}

// Open connects to the SQLite database at dsn and initializes the schema.
// dsn may be ":memory:" for an ephemeral, test-only database.
func Open(dsn string) (*Store, error) {
	connStr := dsn
	if dsn != ":memory:" {
		connStr += "?_journal_mode=WAL&_sync=NORMAL&_pragma=foreign_keys(1)"
	}

	db, err := sqlx.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dsn != ":memory:" {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	} else {
		// A single shared in-memory connection; a pool would give every
		// connection its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Foreign-key enforcement is off by default in SQLite and is needed for
	// ON DELETE CASCADE on checks.target_id. For a file database the DSN's
	// _pragma parameter enables it on every pooled connection; this statement
	// covers the single in-memory connection.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{DB: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the targets and checks tables, their indexes, and the
// updated_at trigger. Idempotent; safe to run on every startup.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS targets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		url        TEXT NOT NULL,
		enabled    BOOLEAN NOT NULL DEFAULT TRUE,
		interval_s INTEGER NOT NULL,
		timeout_s  INTEGER NOT NULL,
		verify_tls BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS checks (
		id            TEXT PRIMARY KEY,
		target_id     TEXT NOT NULL,
		checked_at    DATETIME NOT NULL,
		up            BOOLEAN NOT NULL,
		latency_ms    INTEGER,
		http_status   INTEGER,
		error_kind    TEXT NOT NULL DEFAULT 'unknown',
		error_message TEXT,
		FOREIGN KEY (target_id) REFERENCES targets(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_checks_target_checked_at ON checks(target_id, checked_at);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);

	CREATE TRIGGER IF NOT EXISTS update_targets_timestamp
		AFTER UPDATE ON targets
		BEGIN
			UPDATE targets SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
		END;
	`

	if _, err := s.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// HealthCheck verifies the database connection is responsive.
func (s *Store) HealthCheck() error {
	var result int
	if err := s.Get(&result, "SELECT 1"); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction: commits on a nil return, rolls back
// otherwise. The scheduler opens one of these per dispatched probe so a
// failing target's rollback never touches another target's write.
func (s *Store) WithTx(fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

// Targets returns a repository for target CRUD and due-target scans.
func (s *Store) Targets() *TargetRepository {
	return &TargetRepository{db: s}
}

// Checks returns a repository for check inserts and read aggregations.
func (s *Store) Checks() *CheckRepository {
	return &CheckRepository{db: s}
}
