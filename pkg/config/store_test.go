package config

import (
	"path/filepath"
	"testing"
)

func TestNextExtensionWraps(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 1},
		{1, 2},
		{998, 999},
		{999, 1},
	}

	for _, tt := range tests {
		if got := nextExtension(tt.current); got != tt.want {
			t.Errorf("nextExtension(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestExtensionKind(t *testing.T) {
	if KindAnalysis.Marker() != "A" || KindMaintenance.Marker() != "M" {
		t.Errorf("markers = %s, %s", KindAnalysis.Marker(), KindMaintenance.Marker())
	}
	if KindAnalysis.String() != "extension_analysis" {
		t.Errorf("KindAnalysis.String() = %s", KindAnalysis)
	}
	if KindMaintenance.String() != "extension_maintenance" {
		t.Errorf("KindMaintenance.String() = %s", KindMaintenance)
	}
}

func TestStoreNextExtensionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	cfg := validConfig(t)
	cfg.ExtensionAnalysis = 998
	cfg.ExtensionMaintenance = 4
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	want := []string{"999", "001", "002"}
	for _, w := range want {
		got, err := store.NextExtension(KindAnalysis)
		if err != nil {
			t.Fatalf("NextExtension failed: %v", err)
		}
		if got != w {
			t.Errorf("NextExtension() = %s, want %s", got, w)
		}
	}

	got, err := store.NextExtension(KindMaintenance)
	if err != nil {
		t.Fatalf("NextExtension failed: %v", err)
	}
	if got != "005" {
		t.Errorf("maintenance extension = %s, want 005", got)
	}

	if store.Config().ExtensionAnalysis != 2 {
		t.Errorf("in-memory analysis counter = %d, want 2", store.Config().ExtensionAnalysis)
	}

	reloaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if reloaded.ExtensionAnalysis != 2 || reloaded.ExtensionMaintenance != 5 {
		t.Errorf("persisted counters = %d, %d, want 2, 5", reloaded.ExtensionAnalysis, reloaded.ExtensionMaintenance)
	}
}

func TestStoreDoesNotPersistEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	cfg := validConfig(t)
	cfg.DatabasePath = "/file/tts.db"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("TTS_DB", "/env/override.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	if store.Config().DatabasePath != "/env/override.db" {
		t.Fatalf("override not applied: %s", store.Config().DatabasePath)
	}

	if _, err := store.NextExtension(KindAnalysis); err != nil {
		t.Fatalf("NextExtension failed: %v", err)
	}

	onDisk := DefaultConfig()
	if err := loadFromFile(onDisk, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if onDisk.DatabasePath != "/file/tts.db" {
		t.Errorf("persisted database = %s, want /file/tts.db", onDisk.DatabasePath)
	}
	if onDisk.ExtensionAnalysis != 1 {
		t.Errorf("persisted analysis counter = %d, want 1", onDisk.ExtensionAnalysis)
	}
}

func TestStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new", "settings.yaml")
	store := NewStore(path, DefaultConfig())

	got, err := store.NextExtension(KindMaintenance)
	if err != nil {
		t.Fatalf("NextExtension failed: %v", err)
	}
	if got != "001" {
		t.Errorf("first extension = %s, want 001", got)
	}
}
