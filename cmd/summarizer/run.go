package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"textsummarizer/internal/config"
	"textsummarizer/internal/logging"
	"textsummarizer/internal/notifications"
	"textsummarizer/internal/pipeline"
	"textsummarizer/internal/preflight"
	"textsummarizer/internal/runmetrics"
	"textsummarizer/internal/runstore"
	"textsummarizer/internal/stageexec"
)

type runOptions struct {
	stages        []string
	skipPreflight bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the data preparation pipeline",
		Long: "Run data ingestion, data validation and data transformation in order.\n" +
			"The first failing stage stops the run and the command exits non-zero.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runPipeline(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringSliceVar(&opts.stages, "stage", nil, "Run only the named stage(s), still in pipeline order")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Skip directory, disk space and source checks")
	return cmd
}

func runPipeline(parent context.Context, cfg *config.Config, opts runOptions, out, errOut io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	runID := uuid.NewString()

	logger, logPath, err := logging.NewForRun(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Dir, runID, started)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if logPath != "" {
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Logging.Dir,
			Pattern: logging.RunFilePattern,
			Exclude: []string{logPath},
		})
	}

	if err := cfg.EnsureDirectories(logger); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another summarizer run holds " + cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	if !opts.skipPreflight {
		if failed := preflight.Failed(preflight.RunAll(signalCtx, cfg)); len(failed) > 0 {
			rows := make([][]string, 0, len(failed))
			for _, r := range failed {
				rows = append(rows, []string{r.Name, r.Detail})
			}
			fmt.Fprintln(errOut, renderTable([]string{"Check", "Detail"}, rows, nil))
			return fmt.Errorf("preflight failed: %d check(s) did not pass", len(failed))
		}
	}

	stages, err := pipeline.Stages(cfg, logger, opts.stages...)
	if err != nil {
		return err
	}
	if isTerminal(errOut) {
		for _, s := range stages {
			if p, ok := s.Handler.(interface{ SetProgressOutput(io.Writer) }); ok {
				p.SetProgressOutput(errOut)
			}
		}
	}

	store, err := runstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	if n, err := store.MarkInterrupted(signalCtx, started); err != nil {
		logging.WarnWithContext(logger, "interrupted run cleanup failed", "run_history_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale runs keep the running status"),
		)
	} else if n > 0 {
		logger.Info("stale runs marked interrupted",
			logging.Int64("count", n),
			logging.String(logging.FieldEventType, "runs_interrupted"),
		)
	}

	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Name)
	}
	run := &runstore.Run{
		ID:         runID,
		ConfigPath: cfg.Path,
		Stages:     names,
		LogPath:    logPath,
		StartedAt:  started,
	}
	if err := store.Begin(signalCtx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	logger.Info("pipeline run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("stages", strings.Join(names, ",")),
		logging.String("config", cfg.Path),
	)

	report, runErr := stageexec.Run(signalCtx, stageexec.Options{
		Logger:   logger,
		Stages:   stages,
		RunID:    runID,
		Recorder: store,
	})
	finished := time.Now()

	// The signal context may already be canceled; history still has to close.
	finishCtx := context.WithoutCancel(signalCtx)
	if err := store.Finish(finishCtx, runID, finished, report.FailedStage(), runErr); err != nil {
		logging.WarnWithContext(logger, "run history update failed", "run_history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the run as running until the next run"),
		)
	}

	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Textfile) != "" {
		summary := metricsSummary(cfg, report, runErr == nil, started, finished)
		if err := runmetrics.Write(cfg.Metrics.Textfile, summary); err != nil {
			logging.WarnWithContext(logger, "metrics textfile write failed", "metrics_write_failed",
				logging.String(logging.FieldPath, cfg.Metrics.Textfile),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check metrics.textfile and its directory permissions"),
			)
		}
	}

	notifier := notifications.NewService(cfg.Notifications)
	var notifyErr error
	if runErr != nil {
		notifyErr = notifier.NotifyRunFailed(finishCtx, runID, report.FailedStage(), runErr)
	} else {
		notifyErr = notifier.NotifyRunCompleted(finishCtx, runID, report.CompletedCount(), finished.Sub(started))
	}
	if notifyErr != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(notifyErr),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}

	if runErr != nil {
		return runErr
	}

	logger.Info("pipeline run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("stages_completed", report.CompletedCount()),
		logging.Duration("duration", finished.Sub(started)),
	)
	fmt.Fprintf(out, "Run %s completed: %d/%d stages\n", runID, report.CompletedCount(), len(report.Stages))
	if logPath != "" {
		fmt.Fprintf(out, "Log: %s\n", logPath)
	}
	return nil
}

func metricsSummary(cfg *config.Config, report stageexec.Report, success bool, started, finished time.Time) runmetrics.Summary {
	summary := runmetrics.Summary{
		RunID:    report.RunID,
		Success:  success,
		Started:  started,
		Finished: finished,
	}
	transformed := false
	for _, s := range report.Stages {
		if s.State == stageexec.StateNotStarted {
			continue
		}
		done := s.State == stageexec.StateCompleted
		summary.Stages = append(summary.Stages, runmetrics.Stage{Name: s.Name, Success: done, Duration: s.Duration})
		if done && s.Name == pipeline.StageTransformation {
			transformed = true
		}
	}
	if !transformed {
		return summary
	}
	manifest, err := pipeline.ReadManifest(cfg.DataTransformation.RootDir)
	if err != nil {
		return summary
	}
	for _, split := range manifest.Splits {
		summary.Splits = append(summary.Splits, runmetrics.Split{
			Name:    split.Name,
			Written: split.RecordsWritten,
			Dropped: split.RecordsDropped,
		})
	}
	return summary
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var _ stageexec.Recorder = (*runstore.Store)(nil)
