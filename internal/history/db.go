package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/contacthound/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Run statuses stored in the runs table.
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// DB records every run and the contact records it produced.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunEntry is a row of the runs table.
type RunEntry struct {
	ID          int64
	Source      string
	Query       sql.NullString
	NumTargets  int
	StartTime   time.Time
	EndTime     sql.NullTime
	Status      string
	OutputPath  sql.NullString
	RecordCount int
}

// RootOutcome is how a single root of a run ended.
type RootOutcome struct {
	Website      string
	Outcome      string
	PagesFetched int
	Duration     time.Duration
}

// NewDB opens (or creates) the database at path and ensures the schema.
func NewDB(path string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// a single writer keeps sqlite from reporting SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	d := &DB{db: conn, logger: logger}
	if err := d.InitSchema(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", path).Msg("History database ready")
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the runs and records tables if they don't exist.
func (d *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		query TEXT,
		num_targets INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		output_path TEXT
	);
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		website TEXT NOT NULL,
		emails TEXT NOT NULL,
		numbers TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	`
	if _, err := d.db.Exec(query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a STARTED run and returns its id.
func (d *DB) RecordRunStart(ctx context.Context, source, query string, numTargets int, start time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO runs (source, query, num_targets, start_time, status) VALUES (?, ?, ?, ?, ?)`,
		source, nullString(query), numTargets, start.UTC(), StatusStarted)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	d.logger.Debug().Int64("run_id", id).Str("source", source).Msg("Run recorded")
	return id, nil
}

// RecordRunCompletion stores the per-root summaries of a run and closes it with status.
func (d *DB) RecordRunCompletion(ctx context.Context, runID int64, end time.Time, status, outputPath string, summaries []models.RunSummary) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (run_id, website, emails, numbers, outcome, pages_fetched, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, sum := range summaries {
		r := sum.Record
		emails, err := encodeSet(r.Emails)
		if err != nil {
			return err
		}
		numbers, err := encodeSet(r.Numbers)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, r.Website, emails, numbers,
			sum.Outcome.String(), sum.PagesFetched, sum.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", r.Website, err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET end_time = ?, status = ?, output_path = ? WHERE id = ?`,
		end.UTC(), status, nullString(outputPath), runID)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %d: %w", runID, err)
	}
	d.logger.Info().Int64("run_id", runID).Str("status", status).Int("records", len(summaries)).Msg("Run completed in history")
	return nil
}

// Run returns a single run with its record count.
func (d *DB) Run(ctx context.Context, runID int64) (RunEntry, error) {
	var e RunEntry
	err := d.db.QueryRowContext(ctx, `
		SELECT r.id, r.source, r.query, r.num_targets, r.start_time, r.end_time, r.status, r.output_path,
			(SELECT COUNT(*) FROM records WHERE run_id = r.id)
		FROM runs r WHERE r.id = ?`, runID).
		Scan(&e.ID, &e.Source, &e.Query, &e.NumTargets, &e.StartTime, &e.EndTime, &e.Status, &e.OutputPath, &e.RecordCount)
	if err != nil {
		return RunEntry{}, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	return e, nil
}

// Records returns the records stored for a run, in insertion order.
func (d *DB) Records(ctx context.Context, runID int64) ([]models.ContactRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT website, emails, numbers FROM records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records of run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []models.ContactRecord
	for rows.Next() {
		var website, emails, numbers string
		if err := rows.Scan(&website, &emails, &numbers); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var r models.ContactRecord
		r.Website = website
		if err := json.Unmarshal([]byte(emails), &r.Emails); err != nil {
			return nil, fmt.Errorf("corrupt emails for %s: %w", website, err)
		}
		if err := json.Unmarshal([]byte(numbers), &r.Numbers); err != nil {
			return nil, fmt.Errorf("corrupt numbers for %s: %w", website, err)
		}
		out = append(out, models.NewContactRecord(r.Website, r.Emails, r.Numbers))
	}
	return out, rows.Err()
}

// Outcomes returns how each root of a run ended, in insertion order.
func (d *DB) Outcomes(ctx context.Context, runID int64) ([]RootOutcome, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT website, outcome, pages_fetched, duration_ms FROM records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes of run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []RootOutcome
	for rows.Next() {
		var o RootOutcome
		var ms int64
		if err := rows.Scan(&o.Website, &o.Outcome, &o.PagesFetched, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, o)
	}
	return out, rows.Err()
}

// LastCompletedRun returns the most recent completed run, or sql.ErrNoRows.
func (d *DB) LastCompletedRun(ctx context.Context) (RunEntry, error) {
	var id int64
	err := d.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE status = ? ORDER BY start_time DESC, id DESC LIMIT 1`, StatusCompleted).Scan(&id)
	if err != nil {
		return RunEntry{}, err
	}
	return d.Run(ctx, id)
}

func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode set: %w", err)
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
