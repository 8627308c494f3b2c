package transcode

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mslinn/tricarb_transcoder/pkg/config"
	"github.com/mslinn/tricarb_transcoder/pkg/database"
	"github.com/mslinn/tricarb_transcoder/pkg/frame"
	"github.com/mslinn/tricarb_transcoder/pkg/output"
	"github.com/mslinn/tricarb_transcoder/pkg/printjob"
	"github.com/mslinn/tricarb_transcoder/pkg/protocol"
	"github.com/mslinn/tricarb_transcoder/pkg/report"
)

// Summary describes the outcome of one conversion
type Summary struct {
	RunID    int64 // 0 when the journal is disabled
	UUID     string
	Protocol string
	Layout   frame.Layout
	Records  int
	Skipped  int
	Frames   []frame.Frame
	Written  []*output.Written
	Prints   int
}

// Runner converts the report currently described by prot.dat
type Runner struct {
	Config  *config.Config
	Counter output.ExtensionCounter
	DB      *database.DB      // nil disables the journal
	Printer *printjob.Printer // nil disables printing
	Log     zerolog.Logger
	DryRun  bool
	Stdout  io.Writer // receives frames in dry-run mode
	Now     func() time.Time
}

// NewRunner wires a runner from a settings store. The printer is built
// only when a print feature is enabled.
func NewRunner(store *config.Store, db *database.DB, log zerolog.Logger) (*Runner, error) {
	cfg := store.Config()
	r := &Runner{
		Config:  cfg,
		Counter: store,
		DB:      db,
		Log:     log,
		Stdout:  os.Stdout,
		Now:     time.Now,
	}

	if cfg.PrintByApplication || cfg.PrintIndependentProtocol {
		p, err := printjob.New(cfg.PrintCommand, printjob.DefaultTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to configure printing: %w", err)
		}
		r.Printer = p
	}

	return r, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Execute loads prot.dat and its report, builds the frames and hands them
// to the monitoring application
func (r *Runner) Execute(ctx context.Context) (*Summary, error) {
	cfg := r.Config
	summary := &Summary{UUID: uuid.NewString()}
	log := r.Log.With().Str("run", summary.UUID).Logger()

	md, err := protocol.Load(cfg.DirOutputData)
	if err != nil {
		log.Error().Err(err).Msg("protocol metadata unreadable")
		return nil, err
	}
	if err := md.Validate(); err != nil {
		log.Error().Err(err).Msg("protocol metadata incomplete")
		return nil, err
	}

	summary.Protocol = md.ProtocolNumber()
	summary.Layout = frame.LayoutOf(md)
	log = log.With().Str("protocol", summary.Protocol).Str("layout", summary.Layout.String()).Logger()
	log.Info().Str("count_file", md.CountFile()).Msg("conversion started")

	run, err := r.startRun(summary, md)
	if err != nil {
		return nil, err
	}

	if err := r.convert(ctx, log, md, summary, run); err != nil {
		log.Error().Err(err).Msg("conversion failed")
		r.finishRun(log, run, summary, err)
		return summary, err
	}

	r.finishRun(log, run, summary, nil)
	log.Info().
		Int("records", summary.Records).
		Int("skipped", summary.Skipped).
		Int("frames", len(summary.Frames)).
		Msg("conversion completed")
	return summary, nil
}

func (r *Runner) convert(ctx context.Context, log zerolog.Logger, md protocol.Metadata, summary *Summary, run *database.Run) error {
	cfg := r.Config

	res, err := report.Load(cfg.DirOutputData, md)
	if err != nil {
		return err
	}
	summary.Records = len(res.Records)
	summary.Skipped = res.Skipped
	log.Debug().Int("header_line", res.HeaderLine).Str("pattern", res.Header.Pattern()).Msg("header located")

	frames, err := frame.Build(strconv.Itoa(cfg.CodeTricarb), md, res.Records)
	if err != nil {
		return err
	}
	summary.Frames = frames

	if r.DryRun {
		for _, f := range frames {
			fmt.Fprintln(r.Stdout, f.String())
		}
		return nil
	}

	writer := output.NewWriter(cfg, r.Counter)
	writer.Now = r.now
	reportPath := filepath.Join(cfg.DirOutputData, md.ReportFileName())

	for i, f := range frames {
		written, err := writer.Write(md.ProtocolNumber(), f)
		if err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i+1, err)
		}
		summary.Written = append(summary.Written, written)
		log.Info().Str("file", written.Name).Str("sample", f.SampleID).Msg("frame written")

		if err := r.recordFrame(run, i+1, written); err != nil {
			return err
		}

		if i > 0 && cfg.PrintIndependentProtocol {
			r.print(ctx, log, run, summary, reportPath)
		}
	}

	if cfg.PrintByApplication {
		r.print(ctx, log, run, summary, reportPath)
	}

	return nil
}

// print submits the report; failures are logged and journaled, never returned
func (r *Runner) print(ctx context.Context, log zerolog.Logger, run *database.Run, summary *Summary, path string) {
	if r.Printer == nil {
		return
	}

	started := r.now()
	result := r.Printer.Print(ctx, path)
	summary.Prints++

	if result.Success() {
		log.Info().Str("file", path).Int64("duration_ms", result.DurationMs).Msg("report printed")
	} else {
		log.Warn().Err(result.Error).Str("file", path).Str("stderr", strings.TrimSpace(result.Stderr)).
			Int("exit_code", result.ExitCode).Msg("print failed")
	}

	if run == nil {
		return
	}

	job := &database.PrintJob{
		RunID:      run.ID,
		FilePath:   path,
		Command:    strings.Join(append([]string{r.Printer.Command}, r.Printer.Args...), " "),
		StartedAt:  started,
		DurationMs: result.DurationMs,
		ExitCode:   result.ExitCode,
		Status:     "success",
	}
	if !result.Success() {
		job.Status = "failed"
		if result.Error != nil {
			job.Error = result.Error.Error()
		}
	}
	if err := r.DB.CreatePrintJob(job); err != nil {
		log.Warn().Err(err).Msg("failed to journal print job")
	}
}

func (r *Runner) startRun(summary *Summary, md protocol.Metadata) (*database.Run, error) {
	if r.DB == nil || r.DryRun {
		return nil, nil
	}

	run := &database.Run{
		UUID:           summary.UUID,
		InstrumentCode: r.Config.CodeTricarb,
		ProtocolNumber: md.ProtocolNumber(),
		ProtocolName:   md[protocol.FieldProtocolName],
		CountFile:      md.CountFile(),
		Layout:         summary.Layout.String(),
		StartedAt:      r.now(),
		Status:         database.StatusRunning,
	}
	if err := r.DB.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	summary.RunID = run.ID
	return run, nil
}

func (r *Runner) recordFrame(run *database.Run, seq int, written *output.Written) error {
	if run == nil {
		return nil
	}
	err := r.DB.CreateFrame(&database.Frame{
		RunID:     run.ID,
		Seq:       seq,
		FileName:  written.Name,
		SampleID:  written.Frame.SampleID,
		CRC32:     written.Checksum.Hex(),
		SizeBytes: written.Checksum.SizeBytes,
		Content:   written.Frame.String(),
		WrittenAt: r.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to journal frame %s: %w", written.Name, err)
	}
	return nil
}

func (r *Runner) finishRun(log zerolog.Logger, run *database.Run, summary *Summary, cause error) {
	if run == nil {
		return
	}

	completed := r.now()
	run.RecordCount = summary.Records
	run.SkippedCount = summary.Skipped
	run.FrameCount = len(summary.Written)
	run.CompletedAt = &completed
	run.Status = database.StatusCompleted
	if cause != nil {
		run.Status = database.StatusFailed
		run.Notes = cause.Error()
	}
	if err := r.DB.UpdateRun(run); err != nil {
		log.Warn().Err(err).Msg("failed to update run")
	}
}
