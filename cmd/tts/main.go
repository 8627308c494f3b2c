package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

var version = "dev" // Set by -ldflags during build

// Available subcommands
var subcommands = []struct {
	name        string
	description string
}{
	{"convert", "Transcode the current TriCarb report into frames"},
	{"config", "Manage settings"},
	{"query", "Query the conversion journal"},
}

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("tts version %s\n", version)
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) == 1 || os.Args[1] == "--help" || os.Args[1] == "-h" {
		printHelp()
		os.Exit(0)
	}

	subcommand := os.Args[1]

	validSubcommand := false
	for _, sc := range subcommands {
		if sc.name == subcommand {
			validSubcommand = true
			break
		}
	}

	if !validSubcommand {
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand '%s'\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	cmdName := "tts-" + subcommand

	cmdPath, err := exec.LookPath(cmdName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: command '%s' not found in PATH\n", cmdName)
		fmt.Fprintf(os.Stderr, "Make sure it is installed (try: make install)\n")
		os.Exit(1)
	}

	// Prepare arguments (skip 'tts' and the subcommand name)
	args := []string{filepath.Base(cmdPath)}
	if len(os.Args) > 2 {
		args = append(args, os.Args[2:]...)
	}

	// execve replaces the current process so the tool receives signals directly
	if err := syscall.Exec(cmdPath, args, os.Environ()); err != nil {
		// If exec fails, fall back to running as subprocess
		cmd := exec.Command(cmdPath, args[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.ExitCode())
			}
			fmt.Fprintf(os.Stderr, "Error executing %s: %v\n", cmdName, err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: tts <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Available commands:\n")
	for _, sc := range subcommands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", sc.name, sc.description)
	}
	fmt.Fprintf(os.Stderr, "\nRun 'tts <command> --help' for more information on a command.\n")
}

func printHelp() {
	fmt.Printf("tts - TriCarb to monitoring application transcoder\n\n")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Converts the raw text report of a TriCarb liquid scintillation counter into\n")
	fmt.Printf("  the comma-delimited frames read by the monitoring application.\n")
	fmt.Printf("  This is a unified command that dispatches to the individual tts-* tools.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  tts <command> [options]\n\n")

	fmt.Printf("AVAILABLE COMMANDS:\n")
	for _, sc := range subcommands {
		fmt.Printf("  %-10s %s\n", sc.name, sc.description)
	}

	fmt.Printf("\nGLOBAL OPTIONS:\n")
	fmt.Printf("  -h, --help       Show this help message\n")
	fmt.Printf("  -V, --version    Show version\n\n")

	fmt.Printf("GETTING STARTED:\n")
	fmt.Printf("  1. Answer the setup questions:\n")
	fmt.Printf("       tts config setup\n\n")

	fmt.Printf("  2. Preview the frames of the current run:\n")
	fmt.Printf("       tts convert --dry-run\n\n")

	fmt.Printf("  3. Convert and hand the frames over:\n")
	fmt.Printf("       tts convert\n\n")

	fmt.Printf("  4. Review past conversions:\n")
	fmt.Printf("       tts query runs\n\n")

	fmt.Printf("For detailed help on any command:\n")
	fmt.Printf("  tts <command> --help\n\n")
}
