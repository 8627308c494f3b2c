package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mslinn/tricarb_transcoder/pkg/checksum"
	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/mslinn/tricarb_transcoder/pkg/frame"
)

// DateLayout is the ddmmyy stamp embedded in frame file names
const DateLayout = "020106"

// ExtensionCounter hands out persisted three-digit file extensions
type ExtensionCounter interface {
	NextExtension(kind config.ExtensionKind) (string, error)
}

// Written describes a frame file placed in the destination directory
type Written struct {
	Name     string
	Path     string
	Kind     config.ExtensionKind
	Checksum *checksum.FileChecksum
	Frame    frame.Frame
}

// Writer places frames into the directory watched by the monitoring application
type Writer struct {
	Dir     string
	Counter ExtensionCounter
	// IsMaintenance reports whether a protocol number is maintenance-class
	IsMaintenance func(protocolNumber int) bool
	Now           func() time.Time
}

// NewWriter returns a writer targeting the configured destination directory
func NewWriter(cfg *config.Config, counter ExtensionCounter) *Writer {
	return &Writer{
		Dir:           cfg.DirSrcPAS,
		Counter:       counter,
		IsMaintenance: cfg.IsMaintenance,
		Now:           time.Now,
	}
}

// KindOf classifies a protocol number. A number that is not an integer is
// never in the maintenance list.
func (w *Writer) KindOf(protocolNumber string) config.ExtensionKind {
	n, err := strconv.Atoi(strings.TrimSpace(protocolNumber))
	if err == nil && w.IsMaintenance != nil && w.IsMaintenance(n) {
		return config.KindMaintenance
	}
	return config.KindAnalysis
}

// FileName builds {marker}{instrument code}{ddmmyy}.{ext}
func FileName(kind config.ExtensionKind, f frame.Frame, now time.Time, ext string) string {
	return kind.Marker() + f.Field(frame.FieldInstrumentCode) + now.Format(DateLayout) + "." + ext
}

// Write persists the next extension for the frame's class, then writes the
// frame under its computed name. The file appears atomically.
func (w *Writer) Write(protocolNumber string, f frame.Frame) (*Written, error) {
	kind := w.KindOf(protocolNumber)
	ext, err := w.Counter.NextExtension(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate extension: %w", err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	name := FileName(kind, f, now(), ext)
	path := filepath.Join(w.Dir, name)
	data := []byte(f.String())

	if err := writeAtomic(w.Dir, path, data); err != nil {
		return nil, err
	}

	return &Written{
		Name:     name,
		Path:     path,
		Kind:     kind,
		Checksum: checksum.Compute(path, data),
		Frame:    f,
	}, nil
}

// writeAtomic writes data next to path and renames it into place so the
// watcher never sees a partial frame
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".frame-*")
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write frame file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write frame file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set frame file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move frame file into place: %w", err)
	}
	return nil
}
