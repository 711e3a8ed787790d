// Package stageexec runs an ordered list of stages, logging each transition
// and stopping at the first failure.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"textsummarizer/internal/logging"
	"textsummarizer/internal/services"
	"textsummarizer/internal/stage"
)

// Recorder persists stage transitions. runstore.Store satisfies it.
type Recorder interface {
	StageStarted(ctx context.Context, runID, stageName string, at time.Time) error
	StageFinished(ctx context.Context, runID, stageName string, at time.Time, stageErr error) error
}

// Options controls a pipeline execution.
type Options struct {
	Logger   *slog.Logger
	Stages   []stage.Named
	RunID    string
	Recorder Recorder
	// Now overrides the clock used for durations and recorder timestamps.
	Now func() time.Time
}

// Run executes opts.Stages in order. The first stage error (a recovered panic
// becomes a *PanicError) is logged and returned unchanged, and no later stage
// starts. The Report is populated in every case.
func Run(ctx context.Context, opts Options) (Report, error) {
	report := newReport(opts.RunID, opts.Stages)
	if err := stage.ValidateNames(opts.Stages); err != nil {
		return report, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	for i, named := range opts.Stages {
		stageCtx := logging.WithStage(ctx, named.Name)
		stageLogger := logging.WithContext(stageCtx, logger)

		if err := ctx.Err(); err != nil {
			report.abort(i, 0, err)
			return report, handleFailure(stageLogger, named.Name, err)
		}

		if aware, ok := named.Handler.(stage.LoggerAware); ok {
			aware.SetLogger(stageLogger)
		}

		report.start(i)
		stageLogger.Info(
			"stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.Int(logging.FieldStageIndex, i+1),
			logging.Int(logging.FieldStageCount, len(opts.Stages)),
		)

		started := now()
		if opts.Recorder != nil {
			if err := opts.Recorder.StageStarted(stageCtx, opts.RunID, named.Name, started); err != nil {
				err = fmt.Errorf("record stage start: %w", err)
				report.abort(i, 0, err)
				return report, handleFailure(stageLogger, named.Name, err)
			}
		}

		stageErr := execute(stageCtx, named)
		finished := now()
		elapsed := finished.Sub(started)

		if opts.Recorder != nil {
			if recErr := opts.Recorder.StageFinished(stageCtx, opts.RunID, named.Name, finished, stageErr); recErr != nil {
				if stageErr != nil {
					stageLogger.Warn("failed to record stage failure",
						logging.String(logging.FieldEventType, "stage_record_failed"),
						logging.Error(recErr),
					)
				} else {
					stageErr = fmt.Errorf("record stage result: %w", recErr)
				}
			}
		}

		if stageErr != nil {
			report.abort(i, elapsed, stageErr)
			return report, handleFailure(stageLogger, named.Name, stageErr)
		}

		report.complete(i, elapsed)
		stageLogger.Info(
			"stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("duration", elapsed),
		)
	}

	report.State = StateAllCompleted
	return report, nil
}

func execute(ctx context.Context, named stage.Named) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Stage: named.Name, Value: r, Stack: debug.Stack()}
		}
	}()
	return named.Handler.Execute(ctx)
}

func handleFailure(logger *slog.Logger, stageName string, stageErr error) error {
	details := services.ErrorDetails(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldErrorKind, details.Kind),
		logging.String("error_message", message),
		logging.Error(stageErr),
	}
	if details.Hint != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, details.Hint))
	}
	if panicErr, ok := stageErr.(*PanicError); ok {
		attrs = append(attrs, logging.String("stack", string(panicErr.Stack)))
	}
	logging.ErrorWithContext(logger, "stage failed", "stage_failure", attrs...)
	return stageErr
}

// PanicError reports a panic raised by a stage handler.
type PanicError struct {
	Stage string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
