package preflight

import (
	"context"

	"textsummarizer/internal/config"
)

// MinFreeBytes is the free space required on the artifacts filesystem.
const MinFreeBytes = 100 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Artifacts directory", cfg.ArtifactsRoot),
		CheckDirectoryAccess("State directory", cfg.StateDir),
		CheckFreeSpace("Artifacts free space", cfg.ArtifactsRoot, MinFreeBytes),
		CheckSource(ctx, cfg.DataIngestion),
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
