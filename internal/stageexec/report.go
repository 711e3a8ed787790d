package stageexec

import (
	"time"

	"textsummarizer/internal/stage"
)

// State is a position in the pipeline lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateAllCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAllCompleted:
		return "all_completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StageOutcome is the result of one stage. Stages after an abort stay
// StateNotStarted.
type StageOutcome struct {
	Name     string
	State    State
	Duration time.Duration
	Err      error
}

// Report describes where a pipeline execution ended.
type Report struct {
	RunID string
	State State
	// Current is the index of the running, last completed, or aborted stage;
	// -1 before any stage is reached.
	Current int
	Stages  []StageOutcome
	Err     error
}

func newReport(runID string, stages []stage.Named) Report {
	outcomes := make([]StageOutcome, len(stages))
	for i, s := range stages {
		outcomes[i] = StageOutcome{Name: s.Name, State: StateNotStarted}
	}
	return Report{RunID: runID, State: StateNotStarted, Current: -1, Stages: outcomes}
}

func (r *Report) start(i int) {
	r.State = StateRunning
	r.Current = i
	r.Stages[i].State = StateRunning
}

func (r *Report) complete(i int, elapsed time.Duration) {
	r.State = StateCompleted
	r.Stages[i].State = StateCompleted
	r.Stages[i].Duration = elapsed
}

func (r *Report) abort(i int, elapsed time.Duration, err error) {
	r.State = StateAborted
	r.Current = i
	r.Err = err
	r.Stages[i].State = StateAborted
	r.Stages[i].Duration = elapsed
	r.Stages[i].Err = err
}

// FailedStage names the stage that aborted the run, or "".
func (r Report) FailedStage() string {
	if r.State != StateAborted || r.Current < 0 || r.Current >= len(r.Stages) {
		return ""
	}
	return r.Stages[r.Current].Name
}

// CompletedCount returns how many stages finished successfully.
func (r Report) CompletedCount() int {
	n := 0
	for _, s := range r.Stages {
		if s.State == StateCompleted {
			n++
		}
	}
	return n
}
