package config

import (
	"fmt"
	"os"
)

// ExtensionKind selects one of the two persisted frame counters
type ExtensionKind int

const (
	KindAnalysis ExtensionKind = iota
	KindMaintenance
)

// Marker returns the filename type marker of the counter
func (k ExtensionKind) Marker() string {
	if k == KindMaintenance {
		return "M"
	}
	return "A"
}

func (k ExtensionKind) String() string {
	if k == KindMaintenance {
		return "extension_maintenance"
	}
	return "extension_analysis"
}

// Store is a settings file together with its loaded configuration.
// It assumes a single writer; concurrent invocations are not supported.
type Store struct {
	Path string
	cfg  *Config
}

// OpenStore loads the settings at path, applying environment overrides
func OpenStore(path string) (*Store, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	return &Store{Path: path, cfg: cfg}, nil
}

// NewStore wraps an already loaded configuration
func NewStore(path string, cfg *Config) *Store {
	return &Store{Path: path, cfg: cfg}
}

// Config returns the loaded configuration
func (s *Store) Config() *Config {
	return s.cfg
}

// Save writes the loaded configuration back to the settings file
func (s *Store) Save() error {
	return s.cfg.Save(s.Path)
}

// nextExtension advances a counter, wrapping 999 back to 1
func nextExtension(current int) int {
	if current < ExtensionMax {
		return current + 1
	}
	return 1
}

// NextExtension advances the counter of kind, persists it and returns it
// zero-padded to three digits. The file is re-read first so that
// environment overrides are never written back.
func (s *Store) NextExtension(kind ExtensionKind) (string, error) {
	onDisk := DefaultConfig()
	if err := loadFromFile(onDisk, s.Path); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", kind, err)
	}

	var next int
	switch kind {
	case KindMaintenance:
		next = nextExtension(onDisk.ExtensionMaintenance)
		onDisk.ExtensionMaintenance = next
		s.cfg.ExtensionMaintenance = next
	default:
		next = nextExtension(onDisk.ExtensionAnalysis)
		onDisk.ExtensionAnalysis = next
		s.cfg.ExtensionAnalysis = next
	}

	if err := onDisk.Save(s.Path); err != nil {
		return "", fmt.Errorf("failed to persist %s: %w", kind, err)
	}
	return fmt.Sprintf("%03d", next), nil
}
