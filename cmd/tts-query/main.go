package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mslinn/tricarb_transcoder/pkg/checksum"
	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/mslinn/tricarb_transcoder/pkg/database"
	"github.com/spf13/pflag"
)

var version = "dev" // Set by -ldflags during build

func main() {
	var (
		showVersion bool
		showHelp    bool
		debug       bool
		dbPath      string
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.StringVar(&dbPath, "db", "", "Path to SQLite journal (default from settings)")

	// Stop parsing at first non-flag argument (the subcommand)
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if showVersion {
		fmt.Printf("tts-query version %s\n", version)
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 || showHelp {
		printHelp()
		os.Exit(0)
	}

	subcommand := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	if dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: the journal is disabled (database setting is empty)\n")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch subcommand {
	case "runs":
		handleRuns(db, args[1:], debug)
	case "frames":
		handleFrames(db, args[1:], debug)
	case "prints":
		handlePrints(db, args[1:])
	case "stats":
		handleStats(db, args[1:])
	case "verify":
		handleVerify(db, cfg, args[1:], debug)
	case "export":
		handleExport(db, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand '%s'\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func requireRunID(runID int64) {
	if runID == 0 {
		fmt.Fprintf(os.Stderr, "Error: --run-id is required\n")
		os.Exit(1)
	}
}

func handleRuns(db *database.DB, args []string, debug bool) {
	fs := pflag.NewFlagSet("runs", pflag.ExitOnError)
	protocol := fs.String("protocol", "", "Only runs of this protocol number")
	limit := fs.Int("limit", 20, "Maximum number of runs to display")

	fs.Parse(args)

	runs, err := db.ListRuns(*protocol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return
	}

	if len(runs) > *limit {
		runs = runs[:*limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tStarted\tP#\tProtocol\tLayout\tRecords\tFrames\tStatus")
	fmt.Fprintln(w, "--\t-------\t--\t--------\t------\t-------\t------\t------")

	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ProtocolNumber,
			run.ProtocolName,
			run.Layout,
			run.RecordCount,
			run.FrameCount,
			run.Status,
		)
	}
	w.Flush()

	if debug {
		for _, run := range runs {
			if run.Notes != "" {
				fmt.Printf("\nRun %d (%s): %s", run.ID, run.UUID, run.Notes)
			}
		}
		fmt.Printf("\nShowing %d runs\n", len(runs))
	}
}

func handleFrames(db *database.DB, args []string, debug bool) {
	fs := pflag.NewFlagSet("frames", pflag.ExitOnError)
	runID := fs.Int64("run-id", 0, "Run ID (required)")

	fs.Parse(args)
	requireRunID(*runID)

	frames, err := db.ListFrames(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting frames: %v\n", err)
		os.Exit(1)
	}

	if len(frames) == 0 {
		fmt.Printf("No frames found for run %d\n", *runID)
		return
	}

	fmt.Printf("Frames for run %d:\n\n", *runID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Seq\tFile\tSample\tCRC32\tSize")
	fmt.Fprintln(w, "---\t----\t------\t-----\t----")

	for _, f := range frames {
		sample := f.SampleID
		if sample == "" {
			sample = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			f.Seq, f.FileName, sample, f.CRC32, checksum.FormatSize(f.SizeBytes))
	}
	w.Flush()

	if debug {
		fmt.Println()
		for _, f := range frames {
			fmt.Printf("%s: %s\n", f.FileName, f.Content)
		}
	}
}

func handlePrints(db *database.DB, args []string) {
	fs := pflag.NewFlagSet("prints", pflag.ExitOnError)
	runID := fs.Int64("run-id", 0, "Run ID (required)")

	fs.Parse(args)
	requireRunID(*runID)

	jobs, err := db.ListPrintJobs(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting print jobs: %v\n", err)
		os.Exit(1)
	}

	if len(jobs) == 0 {
		fmt.Printf("No print jobs for run %d\n", *runID)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Command\tFile\tDuration\tExit\tStatus")
	fmt.Fprintln(w, "-------\t----\t--------\t----\t------")

	for _, job := range jobs {
		command := job.Command
		// Truncate long commands
		if len(command) > 30 {
			command = command[:27] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%d\t%s\n",
			command, job.FilePath, job.DurationMs, job.ExitCode, job.Status)
	}
	w.Flush()
}

func handleStats(db *database.DB, args []string) {
	fs := pflag.NewFlagSet("stats", pflag.ExitOnError)
	runID := fs.Int64("run-id", 0, "Run ID (0 = all runs)")

	fs.Parse(args)

	if *runID > 0 {
		run, err := db.GetRun(*runID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: run %d not found: %v\n", *runID, err)
			os.Exit(1)
		}

		fmt.Printf("Run %d Statistics:\n\n", *runID)
		fmt.Printf("  UUID:         %s\n", run.UUID)
		fmt.Printf("  Instrument:   %d\n", run.InstrumentCode)
		fmt.Printf("  Protocol:     %s (%s)\n", run.ProtocolNumber, run.ProtocolName)
		fmt.Printf("  Report:       %s\n", run.CountFile)
		fmt.Printf("  Layout:       %s\n", run.Layout)
		fmt.Printf("  Records:      %d (%d lines skipped)\n", run.RecordCount, run.SkippedCount)
		fmt.Printf("  Frames:       %d\n", run.FrameCount)
		fmt.Printf("  Status:       %s\n", run.Status)
		if run.CompletedAt != nil {
			fmt.Printf("  Duration:     %s\n", run.CompletedAt.Sub(run.StartedAt))
		}

		var bytes int64
		row := db.QueryRowRaw("SELECT COALESCE(SUM(size_bytes), 0) FROM frames WHERE run_id = ?", *runID)
		if err := row.Scan(&bytes); err == nil {
			fmt.Printf("  Frame bytes:  %s\n", checksum.FormatSize(bytes))
		}
		return
	}

	fmt.Printf("Overall Statistics:\n\n")

	rows, err := db.QueryRaw("SELECT status, COUNT(*) FROM runs GROUP BY status ORDER BY status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying runs: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Printf("  Runs by status:\n")
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			continue
		}
		fmt.Printf("    %s: %d\n", status, count)
	}

	rows2, err := db.QueryRaw("SELECT layout, COUNT(*), COALESCE(SUM(frame_count), 0) FROM runs GROUP BY layout ORDER BY layout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying runs: %v\n", err)
		os.Exit(1)
	}
	defer rows2.Close()

	fmt.Printf("\n  Runs by layout:\n")
	for rows2.Next() {
		var layout string
		var count, frames int
		if err := rows2.Scan(&layout, &count, &frames); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			continue
		}
		fmt.Printf("    %s: %d runs, %d frames\n", layout, count, frames)
	}

	var totalFrames int
	if err := db.QueryRowRaw("SELECT COUNT(*) FROM frames").Scan(&totalFrames); err != nil {
		fmt.Fprintf(os.Stderr, "Error counting frames: %v\n", err)
	} else {
		fmt.Printf("\n  Total frames: %d\n", totalFrames)
	}

	var failedPrints int
	if err := db.QueryRowRaw("SELECT COUNT(*) FROM print_jobs WHERE status = 'failed'").Scan(&failedPrints); err != nil {
		fmt.Fprintf(os.Stderr, "Error counting print jobs: %v\n", err)
	} else {
		fmt.Printf("  Failed prints: %d\n", failedPrints)
	}
}

func handleVerify(db *database.DB, cfg *config.Config, args []string, debug bool) {
	fs := pflag.NewFlagSet("verify", pflag.ExitOnError)
	runID := fs.Int64("run-id", 0, "Run ID (required)")
	dir := fs.String("dir", cfg.DirSrcPAS, "Folder holding the frame files")

	fs.Parse(args)
	requireRunID(*runID)

	diffs, err := checksum.Verify(db, *runID, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error verifying frames: %v\n", err)
		os.Exit(1)
	}

	if len(diffs) == 0 {
		fmt.Printf("All frames of run %d match the journal\n", *runID)
		return
	}

	for _, diff := range diffs {
		switch diff.ChangeType {
		case checksum.ChangeMissing:
			fmt.Printf("  MISSING:  %s (consumed or deleted, was %s)\n",
				diff.FileName, checksum.FormatSize(diff.RecordedSize))
		case checksum.ChangeModified:
			fmt.Printf("  MODIFIED: %s (%s)\n",
				diff.FileName, checksum.FormatSize(diff.ActualSize))
		case checksum.ChangeSizeChanged:
			fmt.Printf("  SIZE:     %s (%s -> %s)\n",
				diff.FileName,
				checksum.FormatSize(diff.RecordedSize),
				checksum.FormatSize(diff.ActualSize))
		}
		if debug && diff.ActualCRC != "" {
			fmt.Printf("            CRC: %s -> %s\n", diff.RecordedCRC, diff.ActualCRC)
		}
	}

	fmt.Printf("\nTotal differences: %d\n", len(diffs))
}

func handleExport(db *database.DB, args []string) {
	fs := pflag.NewFlagSet("export", pflag.ExitOnError)
	runID := fs.Int64("run-id", 0, "Run ID (required)")
	outFile := fs.StringP("output", "o", "", "Write to file instead of stdout")

	fs.Parse(args)
	requireRunID(*runID)

	run, err := db.GetRun(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: run %d not found: %v\n", *runID, err)
		os.Exit(1)
	}
	frames, err := db.ListFrames(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting frames: %v\n", err)
		os.Exit(1)
	}

	data, err := checksum.ExportJSON(run, frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outFile == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*outFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outFile, err)
		os.Exit(1)
	}
	fmt.Printf("✓ Exported run %d to %s\n", *runID, *outFile)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: tts-query [OPTIONS] COMMAND [ARGS...]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  runs      List conversion runs\n")
	fmt.Fprintf(os.Stderr, "  frames    Show the frames written by a run\n")
	fmt.Fprintf(os.Stderr, "  prints    Show the print jobs of a run\n")
	fmt.Fprintf(os.Stderr, "  stats     Show journal statistics\n")
	fmt.Fprintf(os.Stderr, "  verify    Compare a run's frame files with the journal\n")
	fmt.Fprintf(os.Stderr, "  export    Export a run as JSON\n")
}

func printHelp() {
	fmt.Printf("tts-query - Query the conversion journal\n\n")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Inspect the runs recorded by tts-convert, the frames each run handed over\n")
	fmt.Printf("  and the print jobs it submitted.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  tts-query [OPTIONS] COMMAND [ARGS...]\n\n")

	fmt.Printf("COMMANDS:\n")
	fmt.Printf("  runs      List conversion runs\n")
	fmt.Printf("  frames    Show the frames written by a run\n")
	fmt.Printf("  prints    Show the print jobs of a run\n")
	fmt.Printf("  stats     Show journal statistics\n")
	fmt.Printf("  verify    Compare a run's frame files with the journal\n")
	fmt.Printf("  export    Export a run as JSON\n\n")

	fmt.Printf("GLOBAL OPTIONS:\n")
	fmt.Printf("  -h, --help         Show this help message\n")
	fmt.Printf("  -V, --version      Show version\n")
	fmt.Printf("  -d, --debug        Enable debug output\n")
	fmt.Printf("  --db PATH          Path to SQLite journal\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  # Last runs of protocol 12\n")
	fmt.Printf("  tts-query runs --protocol 12\n\n")

	fmt.Printf("  # Frames of run 5 with their content\n")
	fmt.Printf("  tts-query -d frames --run-id 5\n\n")

	fmt.Printf("  # Overall statistics\n")
	fmt.Printf("  tts-query stats\n\n")

	fmt.Printf("  # Check whether the monitoring application consumed run 5\n")
	fmt.Printf("  tts-query verify --run-id 5\n\n")
}
