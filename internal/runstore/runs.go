package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an identifier prefix matches several runs.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

const runColumns = "id, status, config_path, stages, failed_stage, error_kind, error_message, log_path, started_at, finished_at"

const stageColumns = "run_id, seq, name, status, started_at, finished_at, duration_ms, error_kind, error_message"

// Begin inserts a new run in the running state.
func (s *Store) Begin(ctx context.Context, run *Run) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = StatusRunning
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, status, config_path, stages, log_path, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Status,
		nullableString(run.ConfigPath),
		joinStages(run.Stages),
		nullableString(run.LogPath),
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// StageStarted records that a stage began executing.
func (s *Store) StageStarted(ctx context.Context, runID, stage string, at time.Time) error {
	ctx = ensureContext(ctx)
	var seq int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM stage_runs WHERE run_id = ?`, runID).Scan(&seq); err != nil {
		return fmt.Errorf("count stages: %w", err)
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO stage_runs (run_id, seq, name, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, seq+1, stage, StatusRunning, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("insert stage %s: %w", stage, err)
	}
	return nil
}

// StageFinished records the outcome of a stage. A nil stageErr marks it completed.
func (s *Store) StageFinished(ctx context.Context, runID, stage string, at time.Time, stageErr error) error {
	ctx = ensureContext(ctx)
	var startedRaw string
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM stage_runs WHERE run_id = ? AND name = ?`, runID, stage,
	).Scan(&startedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("stage %s of run %s: %w", stage, runID, ErrRunNotFound)
	}
	if err != nil {
		return fmt.Errorf("load stage %s: %w", stage, err)
	}
	var durationMS int64
	if started, parseErr := parseTimeString(startedRaw); parseErr == nil {
		durationMS = at.Sub(started).Milliseconds()
	}

	kind, message := errorFields(stageErr)
	_, err = s.execWithRetry(ctx,
		`UPDATE stage_runs SET status = ?, finished_at = ?, duration_ms = ?, error_kind = ?, error_message = ?
		 WHERE run_id = ? AND name = ?`,
		StatusForError(stageErr), formatTime(at), durationMS, kind, message, runID, stage,
	)
	if err != nil {
		return fmt.Errorf("update stage %s: %w", stage, err)
	}
	return nil
}

// Finish closes a run. failedStage names the stage that aborted the run, if any.
func (s *Store) Finish(ctx context.Context, runID string, at time.Time, failedStage string, runErr error) error {
	kind, message := errorFields(runErr)
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, failed_stage = ?, error_kind = ?, error_message = ? WHERE id = ?`,
		StatusForError(runErr), formatTime(at), nullableString(failedStage), kind, message, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// MarkInterrupted closes runs (and their open stages) left in the running
// state by a process that exited without finishing them.
func (s *Store) MarkInterrupted(ctx context.Context, at time.Time) (int64, error) {
	stamp := formatTime(at)
	if _, err := s.execWithRetry(ctx,
		`UPDATE stage_runs SET status = ?, finished_at = ? WHERE status = ?`,
		StatusInterrupted, stamp, StatusRunning,
	); err != nil {
		return 0, fmt.Errorf("mark stages interrupted: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE status = ?`,
		StatusInterrupted, stamp, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark runs interrupted: %w", err)
	}
	return res.RowsAffected()
}

// Get returns the run with the given id or unique id prefix.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Run, error) {
	ctx = ensureContext(ctx)
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		idOrPrefix, escapeLike(idOrPrefix)+"%", idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrRunNotFound)
	case matches[0].ID == idOrPrefix || len(matches) == 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousID)
	}
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Stages returns the stage executions of a run in execution order.
func (s *Store) Stages(ctx context.Context, runID string) ([]StageRun, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stageColumns+` FROM stage_runs WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRun
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, *stage)
	}
	return stages, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (*Run, error) {
	var (
		id          string
		status      string
		configPath  sql.NullString
		stages      sql.NullString
		failedStage sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
		logPath     sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := row.Scan(&id, &status, &configPath, &stages, &failedStage, &errorKind, &errorMsg, &logPath, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run := &Run{
		ID:           id,
		Status:       Status(status),
		ConfigPath:   configPath.String,
		Stages:       splitStages(stages.String),
		FailedStage:  failedStage.String,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMsg.String,
		LogPath:      logPath.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanStage(row scanner) (*StageRun, error) {
	var (
		runID       string
		seq         int
		name        string
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		durationMS  sql.NullInt64
		errorKind   sql.NullString
		errorMsg    sql.NullString
	)
	if err := row.Scan(&runID, &seq, &name, &status, &startedRaw, &finishedRaw, &durationMS, &errorKind, &errorMsg); err != nil {
		return nil, err
	}
	stage := &StageRun{
		RunID:        runID,
		Seq:          seq,
		Name:         name,
		Status:       Status(status),
		Duration:     time.Duration(durationMS.Int64) * time.Millisecond,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMsg.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		stage.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			stage.FinishedAt = &finished
		}
	}
	return stage, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
