package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"textsummarizer/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content := readLog(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(content, "INFO message without caller") {
		t.Fatalf("expected level and message, got %q", content)
	}
}

func TestConsoleLoggerRendersStageSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-stage.log")
	logger, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithStage(context.Background(), "data_ingestion")
	logging.WithContext(ctx, logger).Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	content := readLog(t, logPath)
	if !strings.Contains(content, "data_ingestion: stage started") {
		t.Fatalf("expected stage subject prefix, got %q", content)
	}
	if !strings.Contains(content, "event_type=stage_start") {
		t.Fatalf("expected event_type field, got %q", content)
	}
}

func TestConsoleLoggerRendersStagePositionAndShortRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-position.log")
	logger, err := logging.New(logging.Options{
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
		RunID:            "0123456789abcdef",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "stageexec").Info("stage started",
		logging.String(logging.FieldStage, "data_validation"),
		logging.Int(logging.FieldStageIndex, 2),
		logging.Int(logging.FieldStageCount, 3),
	)

	content := readLog(t, logPath)
	if !strings.Contains(content, "stageexec (data_validation 2/3): stage started") {
		t.Fatalf("expected stage position in subject, got %q", content)
	}
	if !strings.Contains(content, "run_id=01234567") || strings.Contains(content, "0123456789abcdef") {
		t.Fatalf("expected shortened run id, got %q", content)
	}
	if strings.Contains(content, "stage_index=") {
		t.Fatalf("stage position should not repeat as a field, got %q", content)
	}
}

func TestJSONLoggerStampsRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
		RunID:            "run-123",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hello", logging.String("key", "value"))

	var entry map[string]any
	line := strings.TrimSpace(readLog(t, logPath))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode json log line %q: %v", line, err)
	}
	if entry["run_id"] != "run-123" {
		t.Fatalf("expected run_id field, got %v", entry)
	}
	if entry["level"] != "debug" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if _, ok := entry["source"]; !ok {
		t.Fatalf("expected source for debug level, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Level: "warn", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %q", content)
	}
	if !strings.Contains(content, "WARN visible") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestNewForRunWritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	started := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	logger, path, err := logging.NewForRun("info", "json", dir, "abc", started)
	if err != nil {
		t.Fatalf("NewForRun returned error: %v", err)
	}
	if filepath.Base(path) != "summarizer-20240301T123000.000Z.log" {
		t.Fatalf("unexpected log path %q", path)
	}
	matched, err := filepath.Match(logging.RunFilePattern, filepath.Base(path))
	if err != nil || !matched {
		t.Fatalf("run log %q should match %q", path, logging.RunFilePattern)
	}
	logger.Info("written")
	if !strings.Contains(readLog(t, path), `"msg":"written"`) {
		t.Fatalf("expected message in run log")
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("noop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "ignored")
	logging.ErrorWithContext(logger, "ignored", "ignored")
}

func TestGroupedLoggerKeepsRunIDTopLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "grouped.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
		RunID:            "run-456",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("download").Info("fetched", logging.Int("status", 200))

	var entry map[string]any
	line := strings.TrimSpace(readLog(t, logPath))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode json log line %q: %v", line, err)
	}
	if entry["run_id"] != "run-456" {
		t.Fatalf("expected top-level run_id, got %v", entry)
	}
	group, ok := entry["download"].(map[string]any)
	if !ok {
		t.Fatalf("expected download group, got %v", entry)
	}
	if _, nested := group["run_id"]; nested {
		t.Fatalf("run_id should not be nested in group, got %v", group)
	}
	if group["status"] != float64(200) {
		t.Fatalf("expected grouped status, got %v", group)
	}
}

func TestConsoleGroupedLoggerKeepsRunIDUnprefixed(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-grouped.log")
	logger, err := logging.New(logging.Options{
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
		RunID:            "abcdef0123456789",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("download").Info("fetched", logging.Int("status", 200))

	content := readLog(t, logPath)
	if strings.Contains(content, "download.run_id") {
		t.Fatalf("run_id should not carry the group prefix, got %q", content)
	}
	if !strings.Contains(content, "run_id=abcdef01") || !strings.Contains(content, "download.status=200") {
		t.Fatalf("expected run id and grouped field, got %q", content)
	}
}
