package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Setting limits
const (
	CodeMin      = 1
	CodeMax      = 20
	ProtocolMin  = 1
	ProtocolMax  = 60
	ExtensionMin = 0
	ExtensionMax = 999
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.CodeTricarb < CodeMin || cfg.CodeTricarb > CodeMax {
		return fmt.Errorf("code_tricarb must be between %d and %d, got %d", CodeMin, CodeMax, cfg.CodeTricarb)
	}

	dirs := []struct{ key, path string }{
		{"dir_output_data", cfg.DirOutputData},
		{"dir_src_PAS", cfg.DirSrcPAS},
	}
	for _, d := range dirs {
		if _, ok := parseDir(d.path); !ok {
			return fmt.Errorf("%s must be an existing directory, got %q", d.key, d.path)
		}
	}

	for _, n := range cfg.ProtocolMaintenance {
		if n < ProtocolMin || n > ProtocolMax {
			return fmt.Errorf("protocol_maintenance entries must be between %d and %d, got %d", ProtocolMin, ProtocolMax, n)
		}
	}

	exts := []struct {
		key   string
		value int
	}{
		{"extension_maintenance", cfg.ExtensionMaintenance},
		{"extension_analysis", cfg.ExtensionAnalysis},
	}
	for _, e := range exts {
		if e.value < ExtensionMin || e.value > ExtensionMax {
			return fmt.Errorf("%s must be between %d and %d, got %d", e.key, ExtensionMin, ExtensionMax, e.value)
		}
	}

	if (cfg.PrintByApplication || cfg.PrintIndependentProtocol) && strings.TrimSpace(cfg.PrintCommand) == "" {
		return errors.New("print_command is required when printing is enabled")
	}

	return nil
}

// parseIntBetween accepts a string of digits within [min, max]
func parseIntBetween(value string, min, max int) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

// parseIntList accepts comma-separated integers within [min, max].
// Whitespace is ignored; an empty answer is an empty list.
func parseIntList(value string, min, max int) ([]int, bool) {
	value = strings.ReplaceAll(value, " ", "")
	if value == "" {
		return []int{}, true
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, ok := parseIntBetween(part, min, max)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// parseDir accepts the path of an existing directory
func parseDir(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	info, err := os.Stat(value)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return value, true
}

// parseBoolChoice accepts French and English yes/no answers
func parseBoolChoice(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "o", "y", "oui", "yes", "true", "1":
		return true, true
	case "n", "no", "non", "false", "0":
		return false, true
	}
	return false, false
}
