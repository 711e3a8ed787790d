package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsummarizer/internal/pipeline"
	"textsummarizer/internal/stageexec"
	"textsummarizer/internal/testsupport"
)

func TestStagesOrderAndFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	all, err := pipeline.Stages(cfg, nil)
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != strings.Join(pipeline.Names(), ",") {
		t.Fatalf("unexpected order %v", names)
	}

	only, err := pipeline.Stages(cfg, nil, pipeline.StageTransformation, pipeline.StageIngestion)
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	if len(only) != 2 || only[0].Name != pipeline.StageIngestion || only[1].Name != pipeline.StageTransformation {
		t.Fatalf("filter must keep pipeline order, got %+v", only)
	}

	if _, err := pipeline.Stages(cfg, nil, "model_trainer"); err == nil || !strings.Contains(err.Error(), "unknown stage") {
		t.Fatalf("expected unknown stage error, got %v", err)
	}
	for _, name := range pipeline.Names() {
		if pipeline.Describe(name) == "" {
			t.Fatalf("missing description for %s", name)
		}
	}
}

func TestFullPipelineFromLocalArchive(t *testing.T) {
	upstream := filepath.Join(t.TempDir(), "upstream.zip")
	testsupport.WriteZip(t, upstream, testsupport.SampleDataset())
	cfg := testsupport.NewConfig(t, testsupport.WithSourceURL(upstream))

	logger, records := testsupport.CaptureLogger()
	stages, err := pipeline.Stages(cfg, logger)
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	report, err := stageexec.Run(context.Background(), stageexec.Options{Logger: logger, Stages: stages})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.State != stageexec.StateAllCompleted {
		t.Fatalf("unexpected state %s", report.State)
	}
	if got := len(records.Filter("stage completed")); got != 3 {
		t.Fatalf("expected 3 completed stages, got %d", got)
	}
	manifest, err := pipeline.ReadManifest(cfg.DataTransformation.RootDir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.TotalRecords() != 4 || len(manifest.Splits) != 3 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataTransformation.RootDir, "validation.jsonl")); err != nil {
		t.Fatalf("expected validation split output: %v", err)
	}
}
