package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Open opens or creates a SQLite database and initializes the schema
func Open(path string) (*DB, error) {
	// Per-connection settings go in the DSN so every pooled connection gets
	// them: a 5 second busy timeout and foreign key enforcement
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets tts-query read while a conversion is writing
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations for existing databases
	db := &DB{conn: conn}
	if err := db.runMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateRun creates a new run record
func (db *DB) CreateRun(run *Run) error {
	result, err := db.conn.Exec(`
		INSERT INTO runs (uuid, instrument_code, protocol_number, protocol_name, count_file, layout,
			record_count, skipped_count, frame_count, started_at, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.UUID, run.InstrumentCode, run.ProtocolNumber, run.ProtocolName, run.CountFile, run.Layout,
		run.RecordCount, run.SkippedCount, run.FrameCount,
		run.StartedAt.Format(time.RFC3339), run.Status, run.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// UpdateRun updates the counters and outcome of an existing run
func (db *DB) UpdateRun(run *Run) error {
	var completedAt *string
	if run.CompletedAt != nil {
		t := run.CompletedAt.Format(time.RFC3339)
		completedAt = &t
	}

	_, err := db.conn.Exec(`
		UPDATE runs
		SET layout = ?, record_count = ?, skipped_count = ?, frame_count = ?,
			completed_at = ?, status = ?, notes = ?
		WHERE id = ?`,
		run.Layout, run.RecordCount, run.SkippedCount, run.FrameCount,
		completedAt, run.Status, run.Notes, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

const runColumns = `id, uuid, instrument_code, protocol_number, protocol_name, count_file, layout,
	record_count, skipped_count, frame_count, started_at, completed_at, status, notes`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt string
	var completedAt, notes *string

	err := row.Scan(
		&run.ID, &run.UUID, &run.InstrumentCode, &run.ProtocolNumber, &run.ProtocolName,
		&run.CountFile, &run.Layout, &run.RecordCount, &run.SkippedCount, &run.FrameCount,
		&startedAt, &completedAt, &run.Status, &notes,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt != nil {
		t, _ := time.Parse(time.RFC3339, *completedAt)
		run.CompletedAt = &t
	}
	if notes != nil {
		run.Notes = *notes
	}

	return &run, nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(id int64) (*Run, error) {
	run, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunByUUID retrieves a run by its UUID
func (db *DB) GetRunByUUID(uuid string) (*Run, error) {
	run, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE uuid = ?`, uuid))
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns lists runs newest first, optionally filtered by protocol number ("" = all)
func (db *DB) ListRuns(protocolNumber ...string) ([]*Run, error) {
	var query string
	var args []interface{}

	if len(protocolNumber) > 0 && protocolNumber[0] != "" {
		query = `SELECT ` + runColumns + ` FROM runs WHERE protocol_number = ? ORDER BY started_at DESC, id DESC`
		args = append(args, protocolNumber[0])
	} else {
		query = `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CreateFrame records a frame written for a run
func (db *DB) CreateFrame(f *Frame) error {
	result, err := db.conn.Exec(`
		INSERT INTO frames (run_id, seq, file_name, sample_id, crc32, size_bytes, content, written_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Seq, f.FileName, f.SampleID, f.CRC32, f.SizeBytes, f.Content,
		f.WrittenAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create frame: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	f.ID = id
	return nil
}

// ListFrames lists the frames of a run in emission order
func (db *DB) ListFrames(runID int64) ([]*Frame, error) {
	rows, err := db.conn.Query(`
		SELECT id, run_id, seq, file_name, sample_id, crc32, size_bytes, content, written_at
		FROM frames WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	defer rows.Close()

	var frames []*Frame
	for rows.Next() {
		var f Frame
		var sampleID *string
		var writtenAt string

		err := rows.Scan(
			&f.ID, &f.RunID, &f.Seq, &f.FileName, &sampleID,
			&f.CRC32, &f.SizeBytes, &f.Content, &writtenAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}

		if sampleID != nil {
			f.SampleID = *sampleID
		}
		f.WrittenAt, _ = time.Parse(time.RFC3339, writtenAt)
		frames = append(frames, &f)
	}

	return frames, rows.Err()
}

// CreatePrintJob records a print submission for a run
func (db *DB) CreatePrintJob(job *PrintJob) error {
	result, err := db.conn.Exec(`
		INSERT INTO print_jobs (run_id, file_path, command, started_at, duration_ms, exit_code, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.RunID, job.FilePath, job.Command,
		job.StartedAt.Format(time.RFC3339), job.DurationMs,
		job.ExitCode, job.Status, job.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to create print job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	job.ID = id
	return nil
}

// ListPrintJobs lists the print submissions of a run
func (db *DB) ListPrintJobs(runID int64) ([]*PrintJob, error) {
	rows, err := db.conn.Query(`
		SELECT id, run_id, file_path, command, started_at, duration_ms, exit_code, status, error
		FROM print_jobs WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*PrintJob
	for rows.Next() {
		var job PrintJob
		var startedAt string
		var jobErr *string

		err := rows.Scan(
			&job.ID, &job.RunID, &job.FilePath, &job.Command,
			&startedAt, &job.DurationMs, &job.ExitCode, &job.Status, &jobErr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}

		job.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if jobErr != nil {
			job.Error = *jobErr
		}
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// Rows wraps sql.Rows for use in query commands
type Rows = sql.Rows

// QueryRaw executes a raw SQL query and returns rows
func (db *DB) QueryRaw(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRowRaw executes a raw SQL query and returns a single row
func (db *DB) QueryRowRaw(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// runMigrations applies database schema migrations for existing databases
func (db *DB) runMigrations() error {
	// Journals created before skipped rows were tracked lack skipped_count
	var skippedExists bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) > 0
		FROM pragma_table_info('runs')
		WHERE name = 'skipped_count'
	`).Scan(&skippedExists)

	if err != nil {
		return fmt.Errorf("failed to check for skipped_count column: %w", err)
	}

	if !skippedExists {
		_, err := db.conn.Exec(`ALTER TABLE runs ADD COLUMN skipped_count INTEGER DEFAULT 0`)
		if err != nil {
			return fmt.Errorf("failed to add skipped_count column: %w", err)
		}
	}

	return nil
}
