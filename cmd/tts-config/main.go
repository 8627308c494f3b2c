package main

import (
	"fmt"
	"os"

	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/spf13/pflag"
)

var version = "dev" // Set by -ldflags during build

func main() {
	var (
		showVersion bool
		showHelp    bool
		configPath  string
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.StringVar(&configPath, "config", "", "Path to settings file (default: ~/.tts-settings.yaml)")

	// Stop parsing at the subcommand so its own flags reach it
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if showVersion {
		fmt.Printf("tts-config version %s\n", version)
		os.Exit(0)
	}

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: subcommand required\n\n")
		printUsage()
		os.Exit(1)
	}

	subcommand := args[0]

	if configPath != "" {
		os.Setenv("TTS_CONFIG", configPath)
	}

	switch subcommand {
	case "init":
		handleInit(args[1:])
	case "set":
		handleSet(args[1:])
	case "get":
		handleGet(args[1:])
	case "show":
		handleShow()
	case "path":
		handlePath()
	case "validate":
		handleValidate()
	case "setup":
		handleSetup()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand '%s'\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func handleInit(args []string) {
	var force bool
	flags := pflag.NewFlagSet("init", pflag.ExitOnError)
	flags.BoolVarP(&force, "force", "f", false, "Overwrite existing settings file")
	flags.Parse(args)

	configPath := config.GetConfigPath()

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(os.Stderr, "Error: settings file already exists at %s\n", configPath)
		fmt.Fprintf(os.Stderr, "Use --force to overwrite\n")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()

	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Created settings file at %s\n", configPath)
	fmt.Println("\nDefault configuration:")
	fmt.Printf("  database: %s\n", cfg.DatabasePath)
	fmt.Printf("  log_file: %s\n", cfg.LogFile)
	fmt.Printf("  print_command: %s\n", cfg.PrintCommand)
	fmt.Println("\nRun 'tts-config setup' or 'tts-config set' to fill in the instrument settings.")
}

// loadFile reads the settings file without environment overrides, so that
// saving never persists an override
func loadFile() *config.Store {
	configPath := config.GetConfigPath()
	for _, env := range []string{"TTS_DB", "TTS_LOG_FILE", "TTS_PRINT_COMMAND"} {
		os.Unsetenv(env)
	}
	store, err := config.OpenStore(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Try running 'tts-config init' first\n")
		os.Exit(1)
	}
	return store
}

func handleSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Error: 'set' requires KEY and VALUE arguments\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tts-config set KEY VALUE\n")
		fmt.Fprintf(os.Stderr, "\nValid keys:\n")
		for _, key := range config.Keys() {
			fmt.Fprintf(os.Stderr, "  %s\n", key)
		}
		os.Exit(1)
	}

	key := args[0]
	value := args[1]

	store := loadFile()
	if err := store.Config().Set(key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Set %s = %v\n", key, value)
}

func handleGet(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: 'get' requires KEY argument\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tts-config get KEY\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

func handleShow() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration from: %s\n\n", config.GetConfigPath())
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		fmt.Printf("%-28s %s\n", key+":", value)
	}

	fmt.Println("\nEnvironment variable overrides:")
	if dbPath, ok := os.LookupEnv("TTS_DB"); ok {
		fmt.Printf("  TTS_DB=%s (overrides database)\n", dbPath)
	}
	if logFile := os.Getenv("TTS_LOG_FILE"); logFile != "" {
		fmt.Printf("  TTS_LOG_FILE=%s (overrides log_file)\n", logFile)
	}
	if cmd := os.Getenv("TTS_PRINT_COMMAND"); cmd != "" {
		fmt.Printf("  TTS_PRINT_COMMAND=%s (overrides print_command)\n", cmd)
	}
}

func handlePath() {
	fmt.Println(config.GetConfigPath())
}

func handleValidate() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Settings in %s are valid\n", config.GetConfigPath())
}

func handleSetup() {
	store := loadFile()

	fmt.Println("TriCarb transcoder setup")
	fmt.Println()
	if err := config.Setup(store.Config(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n✓ Saved settings to %s\n", store.Path)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: tts-config [OPTIONS] SUBCOMMAND\n\n")
	fmt.Fprintf(os.Stderr, "Manage transcoder settings\n\n")
	fmt.Fprintf(os.Stderr, "Subcommands:\n")
	fmt.Fprintf(os.Stderr, "  init          Create default settings file\n")
	fmt.Fprintf(os.Stderr, "  set KEY VAL   Set a setting\n")
	fmt.Fprintf(os.Stderr, "  get KEY       Get a setting\n")
	fmt.Fprintf(os.Stderr, "  show          Show all settings\n")
	fmt.Fprintf(os.Stderr, "  path          Show settings file path\n")
	fmt.Fprintf(os.Stderr, "  validate      Check the settings\n")
	fmt.Fprintf(os.Stderr, "  setup         Answer the setup questions\n\n")
	pflag.PrintDefaults()
}

func printHelp() {
	fmt.Printf("tts-config - Manage transcoder settings\n\n")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Manages the settings read by tts-convert. Settings are stored in\n")
	fmt.Printf("  ~/.tts-settings.yaml by default; a path ending in .toml is stored as TOML.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  tts-config [OPTIONS] SUBCOMMAND\n\n")

	fmt.Printf("SUBCOMMANDS:\n")
	fmt.Printf("  init          Create default settings file\n")
	fmt.Printf("  set KEY VAL   Set a setting\n")
	fmt.Printf("  get KEY       Get a setting\n")
	fmt.Printf("  show          Display all settings\n")
	fmt.Printf("  path          Show the settings file path\n")
	fmt.Printf("  validate      Check every setting against its limits\n")
	fmt.Printf("  setup         Ask one question per setting until each answer is valid\n\n")

	fmt.Printf("SETTINGS:\n")
	fmt.Printf("  code_tricarb                Instrument number (%d-%d)\n", config.CodeMin, config.CodeMax)
	fmt.Printf("  dir_output_data             Folder holding prot.dat and the reports\n")
	fmt.Printf("  dir_src_PAS                 Folder watched by the monitoring application\n")
	fmt.Printf("  protocol_maintenance        Maintenance protocol numbers (%d-%d), comma separated\n", config.ProtocolMin, config.ProtocolMax)
	fmt.Printf("  extension_maintenance       Last maintenance frame extension (%d-%d)\n", config.ExtensionMin, config.ExtensionMax)
	fmt.Printf("  extension_analysis          Last analysis frame extension (%d-%d)\n", config.ExtensionMin, config.ExtensionMax)
	fmt.Printf("  print_by_application        Print the report once per conversion (O/N)\n")
	fmt.Printf("  print_independent_protocol  Print the report for every extra sample (O/N)\n")
	fmt.Printf("  print_command               Print command, the report path is appended\n")
	fmt.Printf("  database                    SQLite journal path, empty disables it\n")
	fmt.Printf("  log_file                    Log file path\n\n")

	fmt.Printf("ENVIRONMENT VARIABLES:\n")
	fmt.Printf("  TTS_CONFIG         Path to settings file\n")
	fmt.Printf("  TTS_DB             Override database\n")
	fmt.Printf("  TTS_LOG_FILE       Override log_file\n")
	fmt.Printf("  TTS_PRINT_COMMAND  Override print_command\n\n")

	fmt.Printf("OPTIONS:\n")
	pflag.PrintDefaults()

	fmt.Printf("\nEXAMPLES:\n")
	fmt.Printf("  # Create default settings and answer the questions\n")
	fmt.Printf("  tts-config init\n")
	fmt.Printf("  tts-config setup\n\n")

	fmt.Printf("  # Mark protocols 3 and 17 as maintenance\n")
	fmt.Printf("  tts-config set protocol_maintenance 3,17\n\n")

	fmt.Printf("  # Keep settings in TOML\n")
	fmt.Printf("  tts-config --config ~/.tts-settings.toml init\n\n")
}
