package printjob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single print submission
const DefaultTimeout = 30 * time.Second

// Result contains the outcome of one print submission
type Result struct {
	Command    string
	Args       []string
	File       string
	DurationMs int64
	Stdout     string
	Stderr     string
	ExitCode   int
	Error      error
}

// Options configures command execution
type Options struct {
	Dir     string        // Working directory
	Timeout time.Duration // Command timeout (0 for no timeout)
}

// Printer submits report files to the print spooler
type Printer struct {
	Command string
	Args    []string
	Options Options
}

// New builds a printer from a command line such as "lp -d lab".
// The file to print is appended as the last argument.
func New(commandLine string, timeout time.Duration) (*Printer, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("print command is empty")
	}
	return &Printer{
		Command: fields[0],
		Args:    fields[1:],
		Options: Options{Timeout: timeout},
	}, nil
}

// Print submits file; a missing file is reported without running the command
func (p *Printer) Print(ctx context.Context, file string) *Result {
	if _, err := os.Stat(file); err != nil {
		return &Result{
			Command:  p.Command,
			Args:     p.Args,
			File:     file,
			ExitCode: -1,
			Error:    fmt.Errorf("failed to access print file: %w", err),
		}
	}

	args := append(append([]string{}, p.Args...), file)
	result := Run(ctx, p.Command, args, &p.Options)
	result.File = file
	return result
}

// Run executes a command and measures its execution time with millisecond precision
func Run(ctx context.Context, command string, args []string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}

	result := &Result{
		Command: command,
		Args:    args,
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	// Capture stdout and stderr
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result.DurationMs = duration.Milliseconds()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	return result
}

// Success returns true if the command executed successfully
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// String returns a human-readable summary of the result
func (r *Result) String() string {
	status := "success"
	if !r.Success() {
		status = fmt.Sprintf("failed (exit code %d)", r.ExitCode)
	}

	return fmt.Sprintf("%s %v: %s (%.3fs)",
		r.Command,
		r.Args,
		status,
		float64(r.DurationMs)/1000.0,
	)
}

// DebugString returns a detailed debug output
func (r *Result) DebugString() string {
	output := r.String() + "\n"

	if r.Stdout != "" {
		output += fmt.Sprintf("STDOUT:\n%s\n", r.Stdout)
	}

	if r.Stderr != "" {
		output += fmt.Sprintf("STDERR:\n%s\n", r.Stderr)
	}

	if r.Error != nil {
		output += fmt.Sprintf("ERROR: %v\n", r.Error)
	}

	return output
}
