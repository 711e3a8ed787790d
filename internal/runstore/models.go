package runstore

import (
	"context"
	"errors"
	"time"

	"textsummarizer/internal/services"
)

// Status represents the lifecycle state of a run or a stage.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCanceled    Status = "canceled"
	StatusInterrupted Status = "interrupted"
)

// Run is one pipeline invocation.
type Run struct {
	ID           string
	Status       Status
	ConfigPath   string
	Stages       []string
	FailedStage  string
	ErrorKind    string
	ErrorMessage string
	LogPath      string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration reports how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageRun is one stage execution inside a run.
type StageRun struct {
	RunID        string
	Seq          int
	Name         string
	Status       Status
	StartedAt    time.Time
	FinishedAt   *time.Time
	Duration     time.Duration
	ErrorKind    string
	ErrorMessage string
}

// StatusForError maps a run or stage outcome to the persisted status.
// Cancellation is kept apart from failures so interrupted runs are visible.
func StatusForError(err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	default:
		return StatusFailed
	}
}

func errorFields(err error) (kind, message any) {
	if err == nil {
		return nil, nil
	}
	return services.Kind(err), err.Error()
}
