package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(notADir, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{"valid", func(cfg *Config) {}, ""},
		{"empty maintenance list", func(cfg *Config) { cfg.ProtocolMaintenance = nil }, ""},
		{"code too low", func(cfg *Config) { cfg.CodeTricarb = 0 }, "code_tricarb"},
		{"code too high", func(cfg *Config) { cfg.CodeTricarb = 21 }, "code_tricarb"},
		{"missing output dir", func(cfg *Config) { cfg.DirOutputData = "/nonexistent/tricarb" }, "dir_output_data"},
		{"PAS dir is a file", func(cfg *Config) { cfg.DirSrcPAS = notADir }, "dir_src_PAS"},
		{"protocol out of range", func(cfg *Config) { cfg.ProtocolMaintenance = []int{4, 61} }, "protocol_maintenance"},
		{"negative extension", func(cfg *Config) { cfg.ExtensionMaintenance = -1 }, "extension_maintenance"},
		{"extension overflow", func(cfg *Config) { cfg.ExtensionAnalysis = 1000 }, "extension_analysis"},
		{"printing without command", func(cfg *Config) {
			cfg.PrintByApplication = true
			cfg.PrintCommand = " "
		}, "print_command"},
		{"no command while printing disabled", func(cfg *Config) { cfg.PrintCommand = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseIntBetween(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"1", 1, true},
		{" 20 ", 20, true},
		{"0", 0, false},
		{"21", 0, false},
		{"-3", 0, false},
		{"4a", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseIntBetween(tt.input, CodeMin, CodeMax)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseIntBetween(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseIntList(t *testing.T) {
	tests := []struct {
		input string
		want  []int
		ok    bool
	}{
		{"", []int{}, true},
		{"5", []int{5}, true},
		{"1, 2 ,60", []int{1, 2, 60}, true},
		{"1,,2", nil, false},
		{"0", nil, false},
		{"61", nil, false},
		{"a,b", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseIntList(tt.input, ProtocolMin, ProtocolMax)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIntList(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseBoolChoice(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		ok    bool
	}{
		{"O", true, true},
		{"oui", true, true},
		{"Y", true, true},
		{"n", false, true},
		{"NON", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseBoolChoice(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseBoolChoice(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
