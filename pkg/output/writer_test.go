package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/mslinn/tricarb_transcoder/pkg/frame"
)

// fakeCounter hands out sequential extensions per kind
type fakeCounter struct {
	next  map[config.ExtensionKind]int
	calls []config.ExtensionKind
	err   error
}

func (c *fakeCounter) NextExtension(kind config.ExtensionKind) (string, error) {
	c.calls = append(c.calls, kind)
	if c.err != nil {
		return "", c.err
	}
	if c.next == nil {
		c.next = map[config.ExtensionKind]int{}
	}
	c.next[kind]++
	return fmt.Sprintf("%03d", c.next[kind]), nil
}

var fixedNow = time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC)

func testWriter(t *testing.T, counter ExtensionCounter) *Writer {
	t.Helper()
	cfg := &config.Config{DirSrcPAS: t.TempDir(), ProtocolMaintenance: []int{3, 40}}
	w := NewWriter(cfg, counter)
	w.Now = func() time.Time { return fixedNow }
	return w
}

func TestKindOf(t *testing.T) {
	w := testWriter(t, &fakeCounter{})

	tests := []struct {
		protocol string
		want     config.ExtensionKind
	}{
		{"3", config.KindMaintenance},
		{" 40 ", config.KindMaintenance},
		{"12", config.KindAnalysis},
		{"abc", config.KindAnalysis},
		{"", config.KindAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.protocol, func(t *testing.T) {
			if got := w.KindOf(tt.protocol); got != tt.want {
				t.Errorf("KindOf(%q) = %v, want %v", tt.protocol, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	f := frame.New("", []string{"5", "12", "01/01/2024", "0800"})

	if got := FileName(config.KindAnalysis, f, fixedNow, "007"); got != "A5070324.007" {
		t.Errorf("FileName() = %s, want A5070324.007", got)
	}
	if got := FileName(config.KindMaintenance, f, fixedNow, "999"); got != "M5070324.999" {
		t.Errorf("FileName() = %s, want M5070324.999", got)
	}
}

func TestWrite(t *testing.T) {
	counter := &fakeCounter{}
	w := testWriter(t, counter)
	frames := []frame.Frame{
		frame.New("1", []string{"5", "3", "01/01/2024", "0805", "1", "10"}),
		frame.New("2", []string{"5", "3", "01/01/2024", "0810", "2", "12"}),
	}

	var written []*Written
	for _, f := range frames {
		out, err := w.Write("3", f)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		written = append(written, out)
	}

	wantNames := []string{"M5070324.001", "M5070324.002"}
	for i, out := range written {
		if out.Name != wantNames[i] {
			t.Errorf("Name = %s, want %s", out.Name, wantNames[i])
		}
		if out.Kind != config.KindMaintenance {
			t.Errorf("Kind = %v, want maintenance", out.Kind)
		}

		data, err := os.ReadFile(filepath.Join(w.Dir, out.Name))
		if err != nil {
			t.Fatalf("frame file not written: %v", err)
		}
		if string(data) != frames[i].String() {
			t.Errorf("content = %q, want %q", data, frames[i].String())
		}
		if out.Checksum.SizeBytes != int64(len(data)) {
			t.Errorf("checksum size = %d, want %d", out.Checksum.SizeBytes, len(data))
		}
	}

	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("destination holds %d entries, want 2 (no temp files)", len(entries))
	}
}

func TestWrite_CounterFailure(t *testing.T) {
	counter := &fakeCounter{err: errors.New("settings file is read-only")}
	w := testWriter(t, counter)

	_, err := w.Write("12", frame.New("", []string{"5", "12"}))
	if err == nil {
		t.Fatal("Write should fail when no extension can be allocated")
	}

	entries, _ := os.ReadDir(w.Dir)
	if len(entries) != 0 {
		t.Error("no frame should be written without an extension")
	}
}

func TestWrite_MissingDirectory(t *testing.T) {
	w := testWriter(t, &fakeCounter{})
	w.Dir = filepath.Join(w.Dir, "gone")

	if _, err := w.Write("12", frame.New("", []string{"5", "12"})); err == nil {
		t.Error("Write should fail when the destination does not exist")
	}
}

func TestWrite_WithStore(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	cfg := config.DefaultConfig()
	cfg.DirSrcPAS = t.TempDir()
	cfg.ExtensionAnalysis = 999
	if err := cfg.Save(settings); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store, err := config.OpenStore(settings)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	w := NewWriter(store.Config(), store)
	w.Now = func() time.Time { return fixedNow }

	out, err := w.Write("12", frame.New("", []string{"7", "12"}))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out.Name != "A7070324.001" {
		t.Errorf("Name = %s, want A7070324.001 after wrapping", out.Name)
	}
}
