package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"textsummarizer/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand(ctx))

	return configCmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create sample config.yaml and params.yaml files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = ctx.configPath()
			}
			if target == "" {
				target = config.DefaultConfigPath()
			}
			paramsTarget := ctx.paramsPath()
			if paramsTarget == "" {
				paramsTarget = config.DefaultParamsPath()
			}

			out := cmd.OutOrStdout()
			written, err := writeSampleFile(target, overwrite, config.CreateSample)
			if os.IsExist(err) {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
			if err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", written)

			written, err = writeSampleFile(paramsTarget, overwrite, config.CreateSampleParams)
			switch {
			case err == nil:
				fmt.Fprintf(out, "Wrote sample parameters to %s\n", written)
			case os.IsExist(err):
				fmt.Fprintf(out, "Kept existing parameters at %s\n", paramsTarget)
			default:
				return fmt.Errorf("create sample params: %w", err)
			}
			fmt.Fprintln(out, "Edit data_ingestion.source_url if the dataset lives elsewhere, then run `summarizer run`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files if present")
	return cmd
}

// writeSampleFile returns an error satisfying os.IsExist when target exists
// and overwrite is false.
func writeSampleFile(target string, overwrite bool, create func(string) error) (string, error) {
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(expanded)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %q: %w", dir, err)
	}
	if !overwrite {
		if _, err := os.Stat(expanded); err == nil {
			return "", &os.PathError{Op: "create", Path: expanded, Err: os.ErrExist}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("check path: %w", err)
		}
	}
	if err := create(expanded); err != nil {
		return "", err
	}
	return expanded, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate config.yaml and params.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", cfg.Path)
			if cfg.ParamsPath != "" {
				fmt.Fprintf(out, "Params path: %s\n", cfg.ParamsPath)
			} else {
				fmt.Fprintln(out, "Params file not found; transformation defaults were used")
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"artifacts_root", cfg.ArtifactsRoot},
					{"state_dir", cfg.StateDir},
					{"source_url", cfg.DataIngestion.SourceURL},
					{"required files", strings.Join(cfg.DataValidation.AllRequiredFiles, ", ")},
					{"split_pattern", cfg.DataTransformation.SplitPattern},
					{"max_input_words", fmt.Sprintf("%d", cfg.DataTransformation.MaxInputWords)},
					{"max_target_words", fmt.Sprintf("%d", cfg.DataTransformation.MaxTargetWords)},
					{"lowercase", yesNo(cfg.DataTransformation.Lowercase)},
					{"metrics", yesNo(cfg.Metrics.Enabled)},
				},
				nil,
			))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
