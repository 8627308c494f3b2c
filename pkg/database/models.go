package database

import "time"

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run represents one conversion of a report into frames
type Run struct {
	ID             int64
	UUID           string
	InstrumentCode int
	ProtocolNumber string
	ProtocolName   string
	CountFile      string
	Layout         string // 'dependent', 'independent'
	RecordCount    int
	SkippedCount   int
	FrameCount     int
	StartedAt      time.Time
	CompletedAt    *time.Time
	Status         string // 'running', 'completed', 'failed'
	Notes          string
}

// Frame represents one frame file handed to the monitoring application
type Frame struct {
	ID        int64
	RunID     int64
	Seq       int
	FileName  string
	SampleID  string // empty for dependent frames
	CRC32     string
	SizeBytes int64
	Content   string
	WrittenAt time.Time
}

// PrintJob represents a timed submission of the report to the printer
type PrintJob struct {
	ID         int64
	RunID      int64
	FilePath   string
	Command    string
	StartedAt  time.Time
	DurationMs int64 // Millisecond precision
	ExitCode   int
	Status     string // 'success', 'failed'
	Error      string
}
