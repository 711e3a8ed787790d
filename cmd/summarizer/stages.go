package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textsummarizer/internal/pipeline"
	"textsummarizer/internal/stage"
)

func newStagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List pipeline stages and their readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			stages, err := pipeline.Stages(cfg, nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(stages))
			for i, s := range stages {
				health := stage.Healthy(s.Name)
				if checker, ok := s.Handler.(stage.HealthChecker); ok {
					health = checker.HealthCheck(cmd.Context())
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					s.Name,
					stage.Title(s.Name),
					pipeline.Describe(s.Name),
					health.Summary(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Name", "Stage", "Description", "Health"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}
