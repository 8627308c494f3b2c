package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tts.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newRun(uuid, protocol string, started time.Time) *Run {
	return &Run{
		UUID:           uuid,
		InstrumentCode: 5,
		ProtocolNumber: protocol,
		ProtocolName:   "tritium.lsa",
		CountFile:      "run.txt",
		Layout:         "dependent",
		StartedAt:      started,
		Status:         StatusRunning,
	}
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	run := newRun("0b6f3c1e-0000-4000-8000-000000000001", "12", started)
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("CreateRun should assign an ID")
	}

	completed := started.Add(2 * time.Second)
	run.RecordCount = 3
	run.SkippedCount = 4
	run.FrameCount = 1
	run.CompletedAt = &completed
	run.Status = StatusCompleted
	run.Notes = "ok"
	if err := db.UpdateRun(run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.UUID != run.UUID || got.ProtocolNumber != "12" || got.Status != StatusCompleted {
		t.Errorf("GetRun() = %+v", got)
	}
	if got.RecordCount != 3 || got.SkippedCount != 4 || got.FrameCount != 1 {
		t.Errorf("counters = %d/%d/%d", got.RecordCount, got.SkippedCount, got.FrameCount)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, completed)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	byUUID, err := db.GetRunByUUID(run.UUID)
	if err != nil {
		t.Fatalf("GetRunByUUID failed: %v", err)
	}
	if byUUID.ID != run.ID {
		t.Errorf("GetRunByUUID() ID = %d, want %d", byUUID.ID, run.ID)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetRun(42); err == nil {
		t.Error("GetRun should fail for a missing run")
	}
}

func TestCreateRunDuplicateUUID(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	if err := db.CreateRun(newRun("dup", "12", now)); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if err := db.CreateRun(newRun("dup", "12", now)); err == nil {
		t.Error("CreateRun should reject a duplicate UUID")
	}
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	for i, protocol := range []string{"12", "7", "12"} {
		run := newRun(string(rune('a'+i)), protocol, base.Add(time.Duration(i)*time.Hour))
		if err := db.CreateRun(run); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	all, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(all))
	}
	if all[0].UUID != "c" {
		t.Errorf("newest run first: got %s", all[0].UUID)
	}

	filtered, err := db.ListRuns("12")
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("ListRuns(12) returned %d runs, want 2", len(filtered))
	}
}

func TestFrames(t *testing.T) {
	db := openTestDB(t)
	run := newRun("frames", "12", time.Now())
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	written := time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)
	frames := []*Frame{
		{RunID: run.ID, Seq: 2, FileName: "A5010124.002", SampleID: "2", CRC32: "0000beef", SizeBytes: 10, Content: "5,12", WrittenAt: written},
		{RunID: run.ID, Seq: 1, FileName: "A5010124.001", SampleID: "1", CRC32: "deadbeef", SizeBytes: 10, Content: "5,12", WrittenAt: written},
	}
	for _, f := range frames {
		if err := db.CreateFrame(f); err != nil {
			t.Fatalf("CreateFrame failed: %v", err)
		}
	}

	got, err := db.ListFrames(run.ID)
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListFrames() returned %d frames, want 2", len(got))
	}
	if got[0].Seq != 1 || got[0].FileName != "A5010124.001" || got[0].SampleID != "1" {
		t.Errorf("first frame = %+v", got[0])
	}
	if !got[1].WrittenAt.Equal(written) {
		t.Errorf("WrittenAt = %v, want %v", got[1].WrittenAt, written)
	}
}

func TestCreateFrameRequiresRun(t *testing.T) {
	db := openTestDB(t)
	err := db.CreateFrame(&Frame{RunID: 99, Seq: 1, FileName: "x", CRC32: "0", Content: "", WrittenAt: time.Now()})
	if err == nil {
		t.Error("CreateFrame should enforce the run foreign key")
	}
}

func TestPrintJobs(t *testing.T) {
	db := openTestDB(t)
	run := newRun("prints", "12", time.Now())
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	job := &PrintJob{
		RunID:      run.ID,
		FilePath:   "/data/run.rtf",
		Command:    "lp",
		StartedAt:  time.Now(),
		DurationMs: 12,
		ExitCode:   1,
		Status:     "failed",
		Error:      "no default destination",
	}
	if err := db.CreatePrintJob(job); err != nil {
		t.Fatalf("CreatePrintJob failed: %v", err)
	}

	jobs, err := db.ListPrintJobs(run.ID)
	if err != nil {
		t.Fatalf("ListPrintJobs failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("ListPrintJobs() returned %d jobs, want 1", len(jobs))
	}
	if jobs[0].ExitCode != 1 || jobs[0].Error != "no default destination" {
		t.Errorf("job = %+v", jobs[0])
	}
}

func TestQueryRaw(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreateRun(newRun("raw", "12", time.Now())); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	var count int
	if err := db.QueryRowRaw("SELECT COUNT(*) FROM runs WHERE status = ?", StatusRunning).Scan(&count); err != nil {
		t.Fatalf("QueryRowRaw failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	rows, err := db.QueryRaw("SELECT uuid FROM runs")
	if err != nil {
		t.Fatalf("QueryRaw failed: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Error("QueryRaw should return the run")
	}
}

func TestMigrationAddsSkippedCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	_, err = conn.Exec(`CREATE TABLE runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		instrument_code INTEGER NOT NULL,
		protocol_number TEXT NOT NULL,
		protocol_name TEXT NOT NULL,
		count_file TEXT NOT NULL,
		layout TEXT NOT NULL,
		record_count INTEGER DEFAULT 0,
		frame_count INTEGER DEFAULT 0,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		status TEXT NOT NULL,
		notes TEXT
	)`)
	if err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	conn.Close()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open on legacy journal failed: %v", err)
	}
	defer db.Close()

	run := newRun("legacy", "12", time.Now())
	run.SkippedCount = 2
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun after migration failed: %v", err)
	}
	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.SkippedCount != 2 {
		t.Errorf("SkippedCount = %d, want 2", got.SkippedCount)
	}
}
