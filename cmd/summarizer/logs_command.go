package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"textsummarizer/internal/logs"
	"textsummarizer/internal/runstore"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Print the log of a run (the latest run by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var logPath string
			err := withStore(ctx, func(store *runstore.Store) error {
				run, err := resolveRun(cmd, store, args)
				if err != nil {
					return err
				}
				if strings.TrimSpace(run.LogPath) == "" {
					return fmt.Errorf("run %s has no log file", run.ID)
				}
				logPath = run.LogPath
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tail, offset, err := logs.Last(logPath, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(followCtx, logPath, offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}

func resolveRun(cmd *cobra.Command, store *runstore.Store, args []string) (*runstore.Run, error) {
	if len(args) == 1 {
		return store.Get(cmd.Context(), strings.TrimSpace(args[0]))
	}
	runs, err := store.List(cmd.Context(), 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("no runs recorded")
	}
	return &runs[0], nil
}
