// Package journal persists completed provisioning runs to a local SQLite
// database.
//
// The journal is write-only from the orchestrator's point of view:
// provisioning decisions are re-derived from live probes on every run, and
// nothing here is ever consulted to decide whether a tool needs work.
// History exists for humans.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	busyTimeout = 5 * time.Second
)

// Entry is one persisted run row.
type Entry struct {
	Seq       int64
	RunID     string
	Tool      string
	Platform  string
	Result    string
	Steps     int
	StartedAt time.Time
	Duration  time.Duration
}

// Journal is an append-only run log with count-based eviction.
type Journal struct {
	db   *sql.DB
	keep int
}

// DefaultPath returns the default journal location, ~/.devrig/history.db.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()

	return filepath.Join(homeDir, ".devrig", "history.db")
}

// Open opens or creates the journal database at path, applying pragmas and
// schema. keep bounds how many runs are retained; values below 1 select
// the default retention.
func Open(ctx context.Context, path string, keep int) (*Journal, error) {
	if path == "" {
		path = DefaultPath()
	}

	if keep < 1 {
		keep = v1alpha1.DefaultHistoryKeep
	}

	err := os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)",
		filepath.ToSlash(path), int(busyTimeout/time.Millisecond),
	)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// A single connection sidesteps table-lock contention between the
	// appending observer and history queries.
	db.SetMaxOpenConns(1)

	err = configure(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	err = migrate(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Journal{db: db, keep: keep}, nil
}

// Close shuts down the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records a completed run and evicts the oldest rows beyond the
// retention bound. Insert and eviction share one transaction so the bound
// holds even if the process dies mid-append.
func (j *Journal) Append(ctx context.Context, entry Entry) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, tool, platform, result, steps, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Tool,
		entry.Platform,
		entry.Result,
		entry.Steps,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to append run: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM runs WHERE seq NOT IN (SELECT seq FROM runs ORDER BY seq DESC LIMIT ?)`,
		j.keep,
	)
	if err != nil {
		return fmt.Errorf("failed to evict old runs: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit journal transaction: %w", err)
	}

	return nil
}

// List returns runs newest-first, at most limit rows. A limit below 1
// selects the retention bound.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = j.keep
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, run_id, tool, platform, result, steps, started_at, duration_ms
		 FROM runs ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var entries []Entry

	for rows.Next() {
		var (
			entry      Entry
			startedAt  string
			durationMS int64
		)

		err = rows.Scan(
			&entry.Seq,
			&entry.RunID,
			&entry.Tool,
			&entry.Platform,
			&entry.Result,
			&entry.Steps,
			&startedAt,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		entry.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}

		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return entries, nil
}

// Clear deletes all journal rows and returns how many were removed.
func (j *Journal) Clear(ctx context.Context) (int64, error) {
	result, err := j.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear journal: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared runs: %w", err)
	}

	return removed, nil
}

func configure(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}

	for _, pragma := range pragmas {
		_, err := db.ExecContext(ctx, pragma)
		if err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tool TEXT NOT NULL,
		platform TEXT NOT NULL,
		result TEXT NOT NULL,
		steps INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	return nil
}
