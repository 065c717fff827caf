package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dashrip/internal/config"
	"dashrip/internal/logging"
	"dashrip/internal/preflight"
	"dashrip/internal/ripper"
	"dashrip/internal/services"
	"dashrip/internal/session"
)

func newRipCommand(ctx *commandContext) *cobra.Command {
	var (
		resume       bool
		languageFlag string
		workersFlag  int
		noAlbumDirs  bool
		saveCovers   bool
		saveCSV      bool
	)

	cmd := &cobra.Command{
		Use:   "rip",
		Short: "Export every song from the game installation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(languageFlag) != "" {
				cfg.Export.Language = languageFlag
			}
			if workersFlag > 0 {
				cfg.Extraction.Workers = workersFlag
			}
			if noAlbumDirs {
				cfg.Export.AlbumDirs = false
			}
			if cmd.Flags().Changed("covers") {
				cfg.Export.SaveCovers = saveCovers
			}
			if cmd.Flags().Changed("csv") {
				cfg.Export.SaveCSV = saveCSV
			}

			if err := reportPreflightFailures(cmd, cfg); err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runRip(signalCtx, cmd, cfg, resume)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the most recent unfinished session")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Config overlay language (none, ChineseS, ChineseT, English, Japanese, Korean)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of parallel export workers")
	cmd.Flags().BoolVar(&noAlbumDirs, "no-album-dirs", false, "Write every track into the output directory root")
	cmd.Flags().BoolVar(&saveCovers, "covers", false, "Also export cover art as PNG files")
	cmd.Flags().BoolVar(&saveCSV, "csv", false, "Also write a songs.csv track listing")
	return cmd
}

func runRip(ctx context.Context, cmd *cobra.Command, cfg *config.Config, resume bool) error {
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("dashrip-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to update dashrip.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "dashrip-*.log", Exclude: []string{logPath}},
	)

	store, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logging to %s\n", logPath)

	progress := newProgressPrinter(out)
	summary, ripErr := ripper.New(cfg, store, logger).Rip(ctx, ripper.RunOptions{
		Resume:     resume,
		OnProgress: progress.update,
	})
	progress.finish()
	if summary != nil {
		renderRipSummary(out, summary)
	}
	if ripErr != nil {
		logger.Error("rip failed", logging.Error(ripErr))
		return errors.New(services.UserMessage(ripErr))
	}
	if summary != nil && summary.Incomplete {
		fmt.Fprintln(out, "Run interrupted; rerun with --resume to pick up where it left off.")
	}
	return nil
}

func reportPreflightFailures(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	failed := 0
	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			continue
		}
		failed++
		fmt.Fprintln(out, renderStatusLine(result.Name, statusError, result.Detail, colorize))
	}
	for _, status := range preflight.CheckSystemDeps(cfg) {
		if status.Available || status.Optional {
			continue
		}
		failed++
		fmt.Fprintln(out, renderStatusLine(status.Name, statusError, status.Detail, colorize))
	}
	if failed > 0 {
		return fmt.Errorf("%d preflight checks failed; run 'dashrip preflight' for details", failed)
	}
	return nil
}

// progressPrinter renders run progress to the terminal. On a TTY updates
// overwrite a single status line; otherwise each update prints on its own
// line so redirected output stays readable.
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	tty     bool
	lastLen int
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, tty: shouldColorize(out)}
}

func (p *progressPrinter) update(pr ripper.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("[%3.0f%%] %s", pr.Percent, pr.Message)
	if !p.tty {
		fmt.Fprintln(p.out, line)
		return
	}
	pad := p.lastLen - len(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.out, "\r%s%s", line, strings.Repeat(" ", pad))
	p.lastLen = len(line)
}

func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.lastLen > 0 {
		fmt.Fprintln(p.out)
		p.lastLen = 0
	}
}

func renderRipSummary(out io.Writer, summary *ripper.Summary) {
	rows := [][]string{
		{"Session", summary.SessionID},
		{"Language", summary.Language.String()},
		{"Tracks", strconv.Itoa(summary.TrackTotal)},
		{"Exported", strconv.Itoa(summary.Exported)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Cancelled", strconv.Itoa(summary.Cancelled)},
		{"Written", humanize.IBytes(uint64(summary.BytesWritten))},
		{"Elapsed", summary.Elapsed.Truncate(time.Millisecond).String()},
		{"Output", summary.OutputDir},
	}
	if summary.CSVPath != "" {
		rows = append(rows, []string{"CSV", summary.CSVPath})
	}
	fmt.Fprintln(out, renderTable([]string{"Result", ""}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "dashrip.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	symlinkErr := os.Symlink(target, current)
	if symlinkErr == nil {
		return nil
	}
	if err := os.Link(target, current); err == nil {
		return nil
	}
	return fmt.Errorf("link log pointer: %w", symlinkErr)
}
