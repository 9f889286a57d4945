package db

import (
	"database/sql"
	"fmt"
)

// Run represents a row in the runs table.
type Run struct {
	ID         string
	Status     string
	Language   string
	Theme      string
	Epoch      string
	Players    int
	DryRun     bool
	OutputPath string
	Error      string
	StartedAt  string
	FinishedAt string
}

// RunEvent represents a row in the run_events table.
type RunEvent struct {
	ID         int
	RunID      string
	Stage      string
	Event      string
	Attempt    int
	DurationMs int
	Detail     string
	Timestamp  string
}

// BatchItem represents a row in the batch_items table.
type BatchItem struct {
	ID        int
	RunID     string
	Stage     string
	Item      string
	OK        bool
	Attempts  int
	Error     string
	Timestamp string
}

// StartRun inserts a new run in the 'running' state.
func (d *DB) StartRun(id, language, theme, epoch string, players int, dryRun bool) error {
	_, err := d.conn.Exec(
		`INSERT INTO runs (id, status, language, theme, epoch, players, dry_run) VALUES (?, 'running', ?, ?, ?, ?, ?)`,
		id, language, theme, epoch, players, dryRun,
	)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun marks a run terminal. outputPath and errMsg may be empty.
func (d *DB) FinishRun(id, status, outputPath, errMsg string) error {
	res, err := d.conn.Exec(
		`UPDATE runs SET status = ?, output_path = ?, error = ?, finished_at = datetime('now') WHERE id = ?`,
		status, outputPath, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// GetRun returns a run by ID, or nil if it does not exist.
func (d *DB) GetRun(id string) (*Run, error) {
	row := d.conn.QueryRow(
		`SELECT id, status, language, theme, epoch, players, dry_run, output_path, error, started_at, finished_at
		 FROM runs WHERE id = ?`,
		id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, status, language, theme, epoch, players, dry_run, output_path, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var outputPath, errMsg, finishedAt sql.NullString
	err := row.Scan(&r.ID, &r.Status, &r.Language, &r.Theme, &r.Epoch, &r.Players, &r.DryRun,
		&outputPath, &errMsg, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	r.OutputPath = outputPath.String
	r.Error = errMsg.String
	r.FinishedAt = finishedAt.String
	return &r, nil
}

// LogRunEvent inserts a run event.
func (d *DB) LogRunEvent(runID, stage, event string, attempt, durationMs int, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO run_events (run_id, stage, event, attempt, duration_ms, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, event, attempt, durationMs, detail,
	)
	if err != nil {
		return fmt.Errorf("log run event: %w", err)
	}
	return nil
}

// GetRunHistory returns all events for a run, newest first.
func (d *DB) GetRunHistory(runID string) ([]RunEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, stage, event, attempt, duration_ms, detail, timestamp
		 FROM run_events WHERE run_id = ? ORDER BY timestamp DESC, id DESC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run history: %w", err)
	}
	defer rows.Close()

	var events []RunEvent
	for rows.Next() {
		var e RunEvent
		var durationMs sql.NullInt64
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Stage, &e.Event, &e.Attempt, &durationMs, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		e.DurationMs = int(durationMs.Int64)
		e.Detail = detail.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// LogBatchItem inserts one batch item outcome.
func (d *DB) LogBatchItem(runID, stage, item string, ok bool, attempts int, errMsg string) error {
	_, err := d.conn.Exec(
		`INSERT INTO batch_items (run_id, stage, item, ok, attempts, error) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, item, ok, attempts, errMsg,
	)
	if err != nil {
		return fmt.Errorf("log batch item: %w", err)
	}
	return nil
}

// GetBatchItems returns the item outcomes for one stage of a run.
func (d *DB) GetBatchItems(runID, stage string) ([]BatchItem, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, stage, item, ok, attempts, error, timestamp
		 FROM batch_items WHERE run_id = ? AND stage = ? ORDER BY id`,
		runID, stage,
	)
	if err != nil {
		return nil, fmt.Errorf("get batch items: %w", err)
	}
	defer rows.Close()

	var items []BatchItem
	for rows.Next() {
		var b BatchItem
		var errMsg sql.NullString
		if err := rows.Scan(&b.ID, &b.RunID, &b.Stage, &b.Item, &b.OK, &b.Attempts, &errMsg, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("scan batch item: %w", err)
		}
		b.Error = errMsg.String
		items = append(items, b)
	}
	return items, rows.Err()
}
