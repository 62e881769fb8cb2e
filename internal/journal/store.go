package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const runColumns = "id, run_id, character_id, profile, status, output_path, encode_path, segments, skipped, duration_seconds, size_bytes, elapsed_ms, error_message, started_at, finished_at"

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends run and returns it with the assigned ID.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.CharacterID) == "" {
		return Run{}, errors.New("journal record requires a character id")
	}
	if run.Status == "" {
		return Run{}, errors.New("journal record requires a status")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt.Add(-run.Elapsed)
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO runs (run_id, character_id, profile, status, output_path, encode_path, segments, skipped, duration_seconds, size_bytes, elapsed_ms, error_message, started_at, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID,
			run.CharacterID,
			nullableString(run.Profile),
			string(run.Status),
			nullableString(run.OutputPath),
			nullableString(run.EncodePath),
			run.Segments,
			run.Skipped,
			run.DurationSeconds,
			run.SizeBytes,
			run.Elapsed.Milliseconds(),
			nullableString(run.ErrorMessage),
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
		)
		return execErr
	})
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("read run id: %w", err)
	}
	run.ID = id
	return run, nil
}

// ListOptions filters List.
type ListOptions struct {
	CharacterID string
	Limit       int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if id := strings.TrimSpace(opts.CharacterID); id != "" {
		query += " WHERE character_id = ?"
		args = append(args, id)
	}
	query += " ORDER BY finished_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var runs []Run
	err := retryOnBusy(ctx, func() error {
		runs = nil
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LastByCharacter returns the most recent run per character.
func (s *Store) LastByCharacter(ctx context.Context) (map[string]Run, error) {
	runs, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]Run, len(runs))
	for _, run := range runs {
		if _, ok := out[run.CharacterID]; !ok {
			out[run.CharacterID] = run
		}
	}
	return out, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		profile    sql.NullString
		status     string
		output     sql.NullString
		encodePath sql.NullString
		elapsedMS  int64
		errMsg     sql.NullString
		startedRaw string
		finishRaw  string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.CharacterID,
		&profile,
		&status,
		&output,
		&encodePath,
		&run.Segments,
		&run.Skipped,
		&run.DurationSeconds,
		&run.SizeBytes,
		&elapsedMS,
		&errMsg,
		&startedRaw,
		&finishRaw,
	); err != nil {
		return Run{}, err
	}
	run.Profile = profile.String
	run.Status = Status(status)
	run.OutputPath = output.String
	run.EncodePath = encodePath.String
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.ErrorMessage = errMsg.String
	if t, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = t
	}
	if t, err := parseTimeString(finishRaw); err == nil {
		run.FinishedAt = t
	}
	return run, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
