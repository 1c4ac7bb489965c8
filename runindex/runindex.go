package runindex

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for run operations
var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunFinished = errors.New("run already finished")
)

// timeLayout stores instants in UTC at a fixed width so text order in SQLite
// matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunStore records scrape runs, the cards each run wrote and the cards it
// skipped, using SQLite.
type RunStore struct {
	db  *sql.DB
	now func() time.Time
}

// Run represents a single catalog scrape.
type Run struct {
	RunID       uuid.UUID  `json:"run_id"`
	CatalogURL  string     `json:"catalog_url"`
	Status      string     `json:"status"` // "running", "completed", "failed"
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Pages       int        `json:"pages"`
	Cards       int        `json:"cards"`
	Failures    int        `json:"failures"`
	WriteErrors int        `json:"write_errors"`
	Truncated   bool       `json:"truncated"`
	LastError   *string    `json:"last_error,omitempty"`
}

// RunStats are the totals stored when a run completes.
type RunStats struct {
	Pages       int
	Cards       int
	Failures    int
	WriteErrors int
	Truncated   bool
}

// RunCard is a card file written during a run.
type RunCard struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// RunFailure is a card skipped during a run.
type RunFailure struct {
	Page     int    `json:"page"`
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
}

// NewRunStore creates a new run store with the given database path. The
// parent directory of a file path is created when missing.
func NewRunStore(dbPath string) (*RunStore, error) {
	if isFilePath(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &RunStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the run tables if they don't exist.
func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		catalog_url TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		pages INTEGER DEFAULT 0,
		cards INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		write_errors INTEGER DEFAULT 0,
		truncated INTEGER DEFAULT 0,
		last_error TEXT
	);

	CREATE TABLE IF NOT EXISTS run_cards (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		name TEXT NOT NULL,
		filename TEXT NOT NULL,
		PRIMARY KEY (run_id, filename)
	);

	CREATE TABLE IF NOT EXISTS run_failures (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		page INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT,
		message TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// StartRun records a new run in the running state.
func (s *RunStore) StartRun(catalogURL string) (*Run, error) {
	run := &Run{
		RunID:      uuid.New(),
		CatalogURL: catalogURL,
		Status:     StatusRunning,
		StartedAt:  s.now().UTC().Truncate(0),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, catalog_url, status, started_at) VALUES (?, ?, ?, ?)`,
		run.RunID.String(),
		run.CatalogURL,
		run.Status,
		formatTime(&run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// RecordCard records a card file written by a run. Writing the same file
// twice in one run keeps the later card name.
func (s *RunStore) RecordCard(runID uuid.UUID, name, filename string) error {
	_, err := s.db.Exec(
		`INSERT INTO run_cards (run_id, name, filename) VALUES (?, ?, ?)
		 ON CONFLICT (run_id, filename) DO UPDATE SET name = excluded.name`,
		runID.String(), name, filename,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run card: %w", err)
	}
	return nil
}

// RecordFailure records a card skipped by a run.
func (s *RunStore) RecordFailure(runID uuid.UUID, failure RunFailure) error {
	var name any
	if failure.Name != "" {
		name = failure.Name
	}

	_, err := s.db.Exec(
		`INSERT INTO run_failures (run_id, page, position, name, message) VALUES (?, ?, ?, ?, ?)`,
		runID.String(), failure.Page, failure.Position, name, failure.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run failure: %w", err)
	}
	return nil
}

// FinishRun marks a running run completed and stores its totals.
func (s *RunStore) FinishRun(runID uuid.UUID, stats RunStats) error {
	now := s.now()
	truncated := 0
	if stats.Truncated {
		truncated = 1
	}

	result, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, finished_at = ?, pages = ?, cards = ?, failures = ?,
		    write_errors = ?, truncated = ?
		WHERE run_id = ? AND status = ?`,
		StatusCompleted, formatTime(&now), stats.Pages, stats.Cards, stats.Failures,
		stats.WriteErrors, truncated,
		runID.String(), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return s.checkUpdated(runID, result)
}

// FailRun marks a running run failed with the error that aborted it.
func (s *RunStore) FailRun(runID uuid.UUID, runErr error) error {
	now := s.now()
	message := "unknown error"
	if runErr != nil {
		message = runErr.Error()
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, last_error = ? WHERE run_id = ? AND status = ?`,
		StatusFailed, formatTime(&now), message, runID.String(), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return s.checkUpdated(runID, result)
}

// checkUpdated tells a missing run apart from one that already finished.
func (s *RunStore) checkUpdated(runID uuid.UUID, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.GetRun(runID); err != nil {
		return err
	}
	return ErrRunFinished
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(runColumns+` WHERE run_id = ?`, runID.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// ListRuns lists runs, newest first. A limit of zero lists every run.
func (s *RunStore) ListRuns(limit int) ([]Run, error) {
	query := runColumns + ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// ListCards lists the card files written by a run, in write order.
func (s *RunStore) ListCards(runID uuid.UUID) ([]RunCard, error) {
	rows, err := s.db.Query(
		`SELECT name, filename FROM run_cards WHERE run_id = ? ORDER BY rowid`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run cards: %w", err)
	}
	defer rows.Close()

	var cards []RunCard
	for rows.Next() {
		var c RunCard
		if err := rows.Scan(&c.Name, &c.Filename); err != nil {
			return nil, fmt.Errorf("failed to scan run card: %w", err)
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

// ListFailures lists the cards skipped by a run, by page and position.
func (s *RunStore) ListFailures(runID uuid.UUID) ([]RunFailure, error) {
	rows, err := s.db.Query(
		`SELECT page, position, name, message FROM run_failures
		 WHERE run_id = ? ORDER BY page, position`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer rows.Close()

	var failures []RunFailure
	for rows.Next() {
		var f RunFailure
		var name sql.NullString
		if err := rows.Scan(&f.Page, &f.Position, &name, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run failure: %w", err)
		}
		f.Name = name.String
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

const runColumns = `
	SELECT run_id, catalog_url, status, started_at, finished_at,
	       pages, cards, failures, write_errors, truncated, last_error
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun parses a runs row into a Run. It is shared by GetRun and ListRuns.
func scanRun(row rowScanner) (*Run, error) {
	var runIDStr, startedAtStr string
	var finishedAtStr, lastError sql.NullString
	var truncated int

	run := &Run{}
	err := row.Scan(
		&runIDStr, &run.CatalogURL, &run.Status, &startedAtStr, &finishedAtStr,
		&run.Pages, &run.Cards, &run.Failures, &run.WriteErrors, &truncated, &lastError,
	)
	if err != nil {
		return nil, err
	}

	run.RunID, err = uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}
	run.StartedAt = parseTime(startedAtStr)
	run.Truncated = truncated != 0

	if finishedAtStr.Valid {
		t := parseTime(finishedAtStr.String)
		run.FinishedAt = &t
	}
	if lastError.Valid {
		run.LastError = &lastError.String
	}

	return run, nil
}

// isFilePath reports whether a DSN names a plain database file rather than
// an in-memory or URI database.
func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC()
}
