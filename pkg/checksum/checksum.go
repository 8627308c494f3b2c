package checksum

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mslinn/tricarb_transcoder/pkg/database"
)

// FileChecksum represents a frame file's checksum and size
type FileChecksum struct {
	Path      string `json:"path"`
	CRC32     uint32 `json:"crc32"`
	SizeBytes int64  `json:"size_bytes"`
}

// Hex renders the CRC32 the way the journal stores it
func (cs *FileChecksum) Hex() string {
	return fmt.Sprintf("%08x", cs.CRC32)
}

// Compute checksums an in-memory frame about to be written to path
func Compute(path string, data []byte) *FileChecksum {
	return &FileChecksum{
		Path:      path,
		CRC32:     crc32.ChecksumIEEE(data),
		SizeBytes: int64(len(data)),
	}
}

// ComputeFile computes the CRC32 checksum for a single file
func ComputeFile(path string) (*FileChecksum, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hash := crc32.NewIEEE()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, fmt.Errorf("failed to compute checksum: %w", err)
	}

	return &FileChecksum{
		Path:      path,
		CRC32:     hash.Sum32(),
		SizeBytes: info.Size(),
	}, nil
}

// Change types reported by Verify
const (
	ChangeMissing     = "missing"
	ChangeModified    = "modified"
	ChangeSizeChanged = "size-changed"
)

// Difference represents a frame whose file no longer matches the journal
type Difference struct {
	FileName     string
	RecordedCRC  string
	RecordedSize int64
	ActualCRC    string
	ActualSize   int64
	ChangeType   string // "missing", "modified", "size-changed"
}

// Verify compares the journaled frames of a run against the files in dir.
// A missing file usually means the monitoring application already
// consumed it.
func Verify(db *database.DB, runID int64, dir string) ([]*Difference, error) {
	frames, err := db.ListFrames(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get frames for run %d: %w", runID, err)
	}

	var diffs []*Difference
	for _, f := range frames {
		path := filepath.Join(dir, f.FileName)
		cs, err := ComputeFile(path)
		if err != nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				diffs = append(diffs, &Difference{
					FileName:     f.FileName,
					RecordedCRC:  f.CRC32,
					RecordedSize: f.SizeBytes,
					ChangeType:   ChangeMissing,
				})
				continue
			}
			return nil, fmt.Errorf("failed to compute checksum for %s: %w", path, err)
		}

		if cs.Hex() == f.CRC32 {
			continue
		}
		changeType := ChangeModified
		if cs.SizeBytes != f.SizeBytes {
			changeType = ChangeSizeChanged
		}
		diffs = append(diffs, &Difference{
			FileName:     f.FileName,
			RecordedCRC:  f.CRC32,
			RecordedSize: f.SizeBytes,
			ActualCRC:    cs.Hex(),
			ActualSize:   cs.SizeBytes,
			ChangeType:   changeType,
		})
	}

	// Sort by name for consistent output
	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].FileName < diffs[j].FileName
	})

	return diffs, nil
}

// FormatSize formats bytes in human-readable format
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ExportedFrame is one frame of a run export
type ExportedFrame struct {
	Seq       int    `json:"seq"`
	FileName  string `json:"file_name"`
	SampleID  string `json:"sample_id,omitempty"`
	CRC32     string `json:"crc32"`
	SizeBytes int64  `json:"size_bytes"`
	Content   string `json:"content"`
}

// RunExport represents a journaled run in JSON format for export
type RunExport struct {
	RunID          int64            `json:"run_id"`
	UUID           string           `json:"uuid"`
	ProtocolNumber string           `json:"protocol_number"`
	ProtocolName   string           `json:"protocol_name"`
	Layout         string           `json:"layout"`
	Frames         []*ExportedFrame `json:"frames"`
	ExportedAt     time.Time        `json:"exported_at"`
}

// ExportJSON exports a run and its frames to JSON format
func ExportJSON(run *database.Run, frames []*database.Frame) ([]byte, error) {
	export := &RunExport{
		RunID:          run.ID,
		UUID:           run.UUID,
		ProtocolNumber: run.ProtocolNumber,
		ProtocolName:   run.ProtocolName,
		Layout:         run.Layout,
		Frames:         make([]*ExportedFrame, len(frames)),
		ExportedAt:     time.Now(),
	}
	for i, f := range frames {
		export.Frames[i] = &ExportedFrame{
			Seq:       f.Seq,
			FileName:  f.FileName,
			SampleID:  f.SampleID,
			CRC32:     f.CRC32,
			SizeBytes: f.SizeBytes,
			Content:   f.Content,
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return data, nil
}
