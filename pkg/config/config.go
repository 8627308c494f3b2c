package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the transcoder settings
type Config struct {
	CodeTricarb              int    `yaml:"code_tricarb" toml:"code_tricarb"`
	DirOutputData            string `yaml:"dir_output_data" toml:"dir_output_data"`
	DirSrcPAS                string `yaml:"dir_src_PAS" toml:"dir_src_PAS"`
	ProtocolMaintenance      []int  `yaml:"protocol_maintenance" toml:"protocol_maintenance"`
	ExtensionMaintenance     int    `yaml:"extension_maintenance" toml:"extension_maintenance"`
	ExtensionAnalysis        int    `yaml:"extension_analysis" toml:"extension_analysis"`
	PrintByApplication       bool   `yaml:"print_by_application" toml:"print_by_application"`
	PrintIndependentProtocol bool   `yaml:"print_independent_protocol" toml:"print_independent_protocol"`
	PrintCommand             string `yaml:"print_command" toml:"print_command"`
	DatabasePath             string `yaml:"database" toml:"database"`
	LogFile                  string `yaml:"log_file" toml:"log_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dbPath := "tts.db"
	logFile := "tts.log"
	if homeDir, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(homeDir, ".tts", "tts.db")
		logFile = filepath.Join(homeDir, ".tts", "tts.log")
	}
	return &Config{
		ProtocolMaintenance: []int{},
		PrintCommand:        "lp",
		DatabasePath:        dbPath,
		LogFile:             logFile,
	}
}

// Load loads configuration from file and environment variables
// Priority: environment variables > config file > defaults
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path; a missing file yields defaults
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			// Config file is optional, so we just skip if not found
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if db, ok := os.LookupEnv("TTS_DB"); ok {
		cfg.DatabasePath = db
	}
	if logFile := os.Getenv("TTS_LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
	if cmd := os.Getenv("TTS_PRINT_COMMAND"); cmd != "" {
		cfg.PrintCommand = cmd
	}

	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadFromFile loads configuration from a YAML or TOML file
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Save saves the configuration to a file, encoded by its extension
func (cfg *Config) Save(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Rename over the old file so a crash never leaves half a settings file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	configPath := os.Getenv("TTS_CONFIG")
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(homeDir, ".tts-settings.yaml")
		} else {
			configPath = ".tts-settings.yaml"
		}
	}
	return configPath
}

// IsMaintenance reports whether a protocol number is in the maintenance list
func (cfg *Config) IsMaintenance(protocolNumber int) bool {
	for _, n := range cfg.ProtocolMaintenance {
		if n == protocolNumber {
			return true
		}
	}
	return false
}

// GetDatabasePath returns the database path, expanding ~/ if needed
func (cfg *Config) GetDatabasePath() string {
	return expandHome(cfg.DatabasePath)
}

// GetLogFile returns the log file path, expanding ~/ if needed
func (cfg *Config) GetLogFile() string {
	return expandHome(cfg.LogFile)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
