package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sagar9995/shipcrop/constants"
)

const schema = `
CREATE TABLE IF NOT EXISTS folder_jobs (
	id          TEXT PRIMARY KEY,
	folder      TEXT NOT NULL,
	status      TEXT NOT NULL,
	pages       INTEGER NOT NULL DEFAULT 0,
	error_pages INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	error       TEXT NOT NULL DEFAULT ''
);`

// Store records per-folder job outcomes in a local sqlite file so a run's
// results survive the process. Ledger failures are reported to the caller
// but are never fatal to the batch.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Start inserts a RUNNING row for a folder job.
func (s *Store) Start(ctx context.Context, id uuid.UUID, folder string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folder_jobs (id, folder, status, started_at) VALUES (?, ?, ?, ?)`,
		id.String(), folder, string(constants.JobStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ledger start: %w", err)
	}
	return nil
}

// Finish marks a job terminal with its counts and optional error message.
func (s *Store) Finish(ctx context.Context, id uuid.UUID, status constants.JobStatus, pages, errorPages int, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE folder_jobs SET status = ?, pages = ?, error_pages = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(status), pages, errorPages, time.Now().UTC(), errMsg, id.String(),
	)
	if err != nil {
		return fmt.Errorf("ledger finish: %w", err)
	}
	return nil
}

// JobRow is one ledger entry.
type JobRow struct {
	ID         string
	Folder     string
	Status     constants.JobStatus
	Pages      int
	ErrorPages int
	Error      string
}

// Jobs lists all entries, most recent first.
func (s *Store) Jobs(ctx context.Context) ([]JobRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, folder, status, pages, error_pages, error FROM folder_jobs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("ledger query: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("ledger.rows_close_error", "error", err)
		}
	}()

	var out []JobRow
	for rows.Next() {
		var r JobRow
		var status string
		if err := rows.Scan(&r.ID, &r.Folder, &status, &r.Pages, &r.ErrorPages, &r.Error); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		r.Status = constants.JobStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
