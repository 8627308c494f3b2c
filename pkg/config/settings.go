package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// setting binds a settings key to its parser and printer
type setting struct {
	key      string
	question string
	set      func(cfg *Config, value string) bool
	get      func(cfg *Config) string
}

var settings = []setting{
	{
		key:      "code_tricarb",
		question: fmt.Sprintf("Instrument number (%d-%d) => ", CodeMin, CodeMax),
		set: func(cfg *Config, v string) bool {
			n, ok := parseIntBetween(v, CodeMin, CodeMax)
			if ok {
				cfg.CodeTricarb = n
			}
			return ok
		},
		get: func(cfg *Config) string { return strconv.Itoa(cfg.CodeTricarb) },
	},
	{
		key:      "dir_output_data",
		question: "Folder holding the instrument's raw results => ",
		set: func(cfg *Config, v string) bool {
			dir, ok := parseDir(v)
			if ok {
				cfg.DirOutputData = dir
			}
			return ok
		},
		get: func(cfg *Config) string { return cfg.DirOutputData },
	},
	{
		key:      "dir_src_PAS",
		question: "Folder watched by the monitoring application => ",
		set: func(cfg *Config, v string) bool {
			dir, ok := parseDir(v)
			if ok {
				cfg.DirSrcPAS = dir
			}
			return ok
		},
		get: func(cfg *Config) string { return cfg.DirSrcPAS },
	},
	{
		key:      "protocol_maintenance",
		question: "Maintenance protocol numbers (comma separated) => ",
		set: func(cfg *Config, v string) bool {
			list, ok := parseIntList(v, ProtocolMin, ProtocolMax)
			if ok {
				cfg.ProtocolMaintenance = list
			}
			return ok
		},
		get: func(cfg *Config) string {
			parts := make([]string, len(cfg.ProtocolMaintenance))
			for i, n := range cfg.ProtocolMaintenance {
				parts[i] = strconv.Itoa(n)
			}
			return strings.Join(parts, ",")
		},
	},
	{
		key:      "extension_maintenance",
		question: "Last maintenance frame number generated (0 if none) => ",
		set: func(cfg *Config, v string) bool {
			n, ok := parseIntBetween(v, ExtensionMin, ExtensionMax)
			if ok {
				cfg.ExtensionMaintenance = n
			}
			return ok
		},
		get: func(cfg *Config) string { return strconv.Itoa(cfg.ExtensionMaintenance) },
	},
	{
		key:      "extension_analysis",
		question: "Last analysis frame number generated (0 if none) => ",
		set: func(cfg *Config, v string) bool {
			n, ok := parseIntBetween(v, ExtensionMin, ExtensionMax)
			if ok {
				cfg.ExtensionAnalysis = n
			}
			return ok
		},
		get: func(cfg *Config) string { return strconv.Itoa(cfg.ExtensionAnalysis) },
	},
	{
		key:      "print_by_application",
		question: "Print locally from the application (Y/N) => ",
		set: func(cfg *Config, v string) bool {
			b, ok := parseBoolChoice(v)
			if ok {
				cfg.PrintByApplication = b
			}
			return ok
		},
		get: func(cfg *Config) string { return strconv.FormatBool(cfg.PrintByApplication) },
	},
	{
		key:      "print_independent_protocol",
		question: "Print every sample of independent protocols (Y/N) => ",
		set: func(cfg *Config, v string) bool {
			b, ok := parseBoolChoice(v)
			if ok {
				cfg.PrintIndependentProtocol = b
			}
			return ok
		},
		get: func(cfg *Config) string { return strconv.FormatBool(cfg.PrintIndependentProtocol) },
	},
	{
		key: "print_command",
		set: func(cfg *Config, v string) bool {
			v = strings.TrimSpace(v)
			if v == "" {
				return false
			}
			cfg.PrintCommand = v
			return true
		},
		get: func(cfg *Config) string { return cfg.PrintCommand },
	},
	{
		key: "database",
		set: func(cfg *Config, v string) bool {
			cfg.DatabasePath = strings.TrimSpace(v)
			return true
		},
		get: func(cfg *Config) string { return cfg.DatabasePath },
	},
	{
		key: "log_file",
		set: func(cfg *Config, v string) bool {
			cfg.LogFile = strings.TrimSpace(v)
			return true
		},
		get: func(cfg *Config) string { return cfg.LogFile },
	},
}

// Keys returns every settings key in display order
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

func lookup(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// Set parses value with the rules of key and stores it
func (cfg *Config) Set(key, value string) error {
	s, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown config key '%s'", key)
	}
	if !s.set(cfg, value) {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return nil
}

// Get returns the printable value of key
func (cfg *Config) Get(key string) (string, error) {
	s, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("unknown config key '%s'", key)
	}
	return s.get(cfg), nil
}

// Setup asks one question per interactive setting, repeating it until
// the answer is valid
func Setup(cfg *Config, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for _, s := range settings {
		if s.question == "" {
			continue
		}
		for {
			fmt.Fprint(out, s.question)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read answer: %w", err)
				}
				return errors.New("setup aborted: input closed")
			}
			if s.set(cfg, scanner.Text()) {
				break
			}
			fmt.Fprintf(out, "Invalid value for %s\n", s.key)
		}
	}
	return nil
}
