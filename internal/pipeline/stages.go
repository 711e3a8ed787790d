package pipeline

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"textsummarizer/internal/config"
	"textsummarizer/internal/stage"
)

// Stage names in execution order.
const (
	StageIngestion      = "data_ingestion"
	StageValidation     = "data_validation"
	StageTransformation = "data_transformation"
)

// Names returns every stage name in execution order.
func Names() []string {
	return []string{StageIngestion, StageValidation, StageTransformation}
}

// Describe returns a one-line summary of what a stage does.
func Describe(name string) string {
	switch name {
	case StageIngestion:
		return "Download the dataset archive and extract it"
	case StageValidation:
		return "Check required dataset splits and write the status file"
	case StageTransformation:
		return "Normalize and truncate records into model-ready splits"
	default:
		return ""
	}
}

// Stages builds the pipeline in its fixed order. When only is non-empty the
// result is restricted to those stages, still in pipeline order.
func Stages(cfg *config.Config, logger *slog.Logger, only ...string) ([]stage.Named, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline config is required")
	}
	for _, name := range only {
		if !slices.Contains(Names(), name) {
			return nil, fmt.Errorf("unknown stage %q (valid: %s)", name, strings.Join(Names(), ", "))
		}
	}

	all := []stage.Named{
		{Name: StageIngestion, Handler: NewIngestion(cfg, logger)},
		{Name: StageValidation, Handler: NewValidation(cfg, logger)},
		{Name: StageTransformation, Handler: NewTransformation(cfg, logger)},
	}
	if len(only) == 0 {
		return all, nil
	}
	selected := make([]stage.Named, 0, len(only))
	for _, s := range all {
		if slices.Contains(only, s.Name) {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
