package pipeline_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsummarizer/internal/pipeline"
	"textsummarizer/internal/services"
	"textsummarizer/internal/testsupport"
)

func readRecords(t *testing.T, path string) []pipeline.Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var out []pipeline.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r pipeline.Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode %q: %v", scanner.Text(), err)
		}
		out = append(out, r)
	}
	return out
}

func TestTransformationWritesSplitsAndManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWordLimits(4, 2), testsupport.WithLowercase(true))
	data := cfg.DataTransformation.DataPath
	testsupport.WriteJSONL(t, filepath.Join(data, "train.jsonl"), []testsupport.Dialogue{
		{ID: "1", Dialogue: "Amanda:   I baked\r\n\n  COOKIES. Do you want some?", Summary: "Amanda baked cookies."},
		{ID: "2", Dialogue: "   ", Summary: "empty dialogue is dropped"},
		{ID: "3", Dialogue: "Short one", Summary: "Fine"},
	})
	testsupport.WriteJSONL(t, filepath.Join(data, "test.jsonl"), []testsupport.Dialogue{
		{ID: "t", Dialogue: "Hi there", Summary: "Greeting"},
	})

	if err := pipeline.NewTransformation(cfg, nil).Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	train := readRecords(t, filepath.Join(cfg.DataTransformation.RootDir, "train.jsonl"))
	if len(train) != 2 {
		t.Fatalf("expected 2 kept records, got %+v", train)
	}
	if train[0].Dialogue != "amanda: i baked\ncookies." || train[0].Summary != "amanda baked" {
		t.Fatalf("unexpected normalized record %+v", train[0])
	}

	manifest, err := pipeline.ReadManifest(cfg.DataTransformation.RootDir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(manifest.Splits) != 2 || manifest.Splits[0].Name != "test" || manifest.Splits[1].Name != "train" {
		t.Fatalf("unexpected splits %+v", manifest.Splits)
	}
	trainStats := manifest.Splits[1]
	if trainStats.RecordsRead != 3 || trainStats.RecordsWritten != 2 || trainStats.RecordsDropped != 1 {
		t.Fatalf("unexpected train stats %+v", trainStats)
	}
	if trainStats.TruncatedInputs != 1 || trainStats.TruncatedTargets != 1 {
		t.Fatalf("unexpected truncation counts %+v", trainStats)
	}
	if trainStats.Bytes == 0 || !strings.HasSuffix(trainStats.Size, " KB") {
		t.Fatalf("expected size fields, got %+v", trainStats)
	}
	if manifest.TotalRecords() != 3 || !manifest.Lowercase || manifest.MaxInputWords != 4 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
}

func TestTransformationRejectsMalformedLine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.DataTransformation.DataPath, "train.jsonl")
	testsupport.WriteJSONL(t, path, []testsupport.Dialogue{{ID: "1", Dialogue: "a", Summary: "b"}})
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()

	err = pipeline.NewTransformation(cfg, nil).Execute(context.Background())
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "train.jsonl:2") {
		t.Fatalf("expected validation error naming line 2, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.DataTransformation.RootDir, "train.jsonl")); !os.IsNotExist(statErr) {
		t.Fatal("failed split must not leave output behind")
	}
}

func TestTransformationRejectsNonStringFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.DataTransformation.DataPath, "train.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"id":"1","dialogue":["x"],"summary":"y"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := pipeline.NewTransformation(cfg, nil).Execute(context.Background())
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), `"dialogue"`) {
		t.Fatalf("expected field type error, got %v", err)
	}
}

func TestTransformationHonorsFailedValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteJSONL(t, filepath.Join(cfg.DataTransformation.DataPath, "train.jsonl"), []testsupport.Dialogue{{ID: "1", Dialogue: "a", Summary: "b"}})
	if err := pipeline.WriteStatus(cfg.DataValidation.StatusFile, false); err != nil {
		t.Fatal(err)
	}
	err := pipeline.NewTransformation(cfg, nil).Execute(context.Background())
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "failed validation") {
		t.Fatalf("expected refusal after failed validation, got %v", err)
	}
}

func TestTransformationWarnsWithoutStatusFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteJSONL(t, filepath.Join(cfg.DataTransformation.DataPath, "train.jsonl"), []testsupport.Dialogue{{ID: "1", Dialogue: "a", Summary: "b"}})

	logger, records := testsupport.CaptureLogger()
	if err := pipeline.NewTransformation(cfg, logger).Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	warned := records.Filter("validation status missing")
	if len(warned) != 1 || warned[0].Attrs["event_type"] != "validation_status_missing" {
		t.Fatalf("expected missing-status warning, got %v", records.Messages())
	}
}

func TestTransformationWithoutSplitsFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tr := pipeline.NewTransformation(cfg, nil)
	if tr.HealthCheck(context.Background()).Ready {
		t.Fatal("expected unhealthy without splits")
	}
	if err := tr.Execute(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
