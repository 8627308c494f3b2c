package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/mslinn/tricarb_transcoder/pkg/database"
	"github.com/mslinn/tricarb_transcoder/pkg/logging"
	"github.com/mslinn/tricarb_transcoder/pkg/transcode"
	"github.com/spf13/pflag"
)

var version = "dev" // Set by -ldflags during build

func main() {
	var (
		showVersion bool
		showHelp    bool
		debug       bool
		dryRun      bool
		configPath  string
		dbPath      string
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.BoolVarP(&dryRun, "dry-run", "n", false, "Print frames to stdout without writing, counting or printing")
	pflag.StringVar(&configPath, "config", "", "Path to settings file (default: ~/.tts-settings.yaml)")
	pflag.StringVar(&dbPath, "db", "", "Path to SQLite journal (default from settings)")

	pflag.Parse()

	if showVersion {
		fmt.Printf("tts-convert version %s\n", version)
		os.Exit(0)
	}

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	store, err := config.OpenStore(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := store.Config()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid settings in %s: %v\n", configPath, err)
		fmt.Fprintf(os.Stderr, "Run 'tts-config setup' to fix them\n")
		os.Exit(1)
	}

	if debug {
		os.Setenv(logging.EnvLogLevel, "debug")
	}
	logger, err := logging.Setup("tts-convert", cfg.GetLogFile(), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	var db *database.DB
	if dbPath != "" && !dryRun {
		db, err = database.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	runner, err := transcode.NewRunner(store, db, logger.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runner.DryRun = dryRun

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Execute(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: conversion failed: %v\n", err)
		logger.Close()
		os.Exit(1)
	}

	if dryRun {
		return
	}

	for _, w := range summary.Written {
		fmt.Printf("✓ Wrote %s\n", w.Path)
	}
	if debug {
		fmt.Printf("\nRun %s: %d records, %d skipped lines, %d frames, %d prints\n",
			summary.UUID, summary.Records, summary.Skipped, len(summary.Written), summary.Prints)
	}
}

func printHelp() {
	fmt.Printf("tts-convert - Transcode the current TriCarb report\n\n")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Reads prot.dat and the report it names from the instrument's output folder,\n")
	fmt.Printf("  builds the frames for the protocol layout and writes them into the folder\n")
	fmt.Printf("  watched by the monitoring application. Each frame file is named\n")
	fmt.Printf("  {M|A}{instrument}{ddmmyy}.{extension}.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  tts-convert [OPTIONS]\n\n")

	fmt.Printf("OPTIONS:\n")
	pflag.PrintDefaults()

	fmt.Printf("\nENVIRONMENT VARIABLES:\n")
	fmt.Printf("  TTS_CONFIG         Path to settings file\n")
	fmt.Printf("  TTS_DB             Override journal path (empty disables the journal)\n")
	fmt.Printf("  TTS_LOG_FILE       Override log file\n")
	fmt.Printf("  TTS_LOG_LEVEL      trace, debug, info, warn, error or disabled\n")
	fmt.Printf("  TTS_PRINT_COMMAND  Override print command\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  # Preview frames\n")
	fmt.Printf("  tts-convert --dry-run\n\n")

	fmt.Printf("  # Convert with debug output\n")
	fmt.Printf("  tts-convert -d\n\n")
}
