package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"textsummarizer/internal/runstore"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, buildRunViews(runs))
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Started", "Duration", "Failed Stage"},
					buildHistoryRows(runs, time.Now()),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its stages (an id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, func(store *runstore.Store) error {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				stages, err := store.Stages(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", formatStatusLabel(string(run.Status)))
				fmt.Fprintf(out, "Started:  %s\n", formatDisplayTime(run.StartedAt))
				if run.FinishedAt != nil {
					fmt.Fprintf(out, "Duration: %s\n", formatDuration(run.Duration()))
				}
				if run.ConfigPath != "" {
					fmt.Fprintf(out, "Config:   %s\n", run.ConfigPath)
				}
				if run.LogPath != "" {
					fmt.Fprintf(out, "Log:      %s\n", run.LogPath)
				}
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    %s (%s, stage %s)\n", run.ErrorMessage, run.ErrorKind, run.FailedStage)
				}
				if len(stages) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Stage", "Status", "Duration", "Error"},
					buildStageRows(stages),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func withStore(ctx *commandContext, fn func(*runstore.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := runstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

type runView struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Stages      []string `json:"stages"`
	FailedStage string   `json:"failed_stage,omitempty"`
	ErrorKind   string   `json:"error_kind,omitempty"`
	Error       string   `json:"error,omitempty"`
	StartedAt   string   `json:"started_at"`
	FinishedAt  string   `json:"finished_at,omitempty"`
	DurationMS  int64    `json:"duration_ms,omitempty"`
	LogPath     string   `json:"log_path,omitempty"`
}

func buildRunViews(runs []runstore.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		view := runView{
			ID:          run.ID,
			Status:      string(run.Status),
			Stages:      run.Stages,
			FailedStage: run.FailedStage,
			ErrorKind:   run.ErrorKind,
			Error:       run.ErrorMessage,
			StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
			LogPath:     run.LogPath,
		}
		if run.FinishedAt != nil {
			view.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
			view.DurationMS = run.Duration().Milliseconds()
		}
		views = append(views, view)
	}
	return views
}

func buildHistoryRows(runs []runstore.Run, now time.Time) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = formatDuration(run.Duration())
		}
		failed := run.FailedStage
		if failed == "" {
			failed = "-"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			formatStatusLabel(string(run.Status)),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			duration,
			failed,
		})
	}
	return rows
}

func buildStageRows(stages []runstore.StageRun) [][]string {
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		duration := "-"
		if s.FinishedAt != nil {
			duration = formatDuration(s.Duration)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Seq),
			s.Name,
			formatStatusLabel(string(s.Status)),
			duration,
			s.ErrorMessage,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
