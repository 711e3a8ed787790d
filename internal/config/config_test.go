package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsummarizer/internal/config"
	"textsummarizer/internal/configbox"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAppliesDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config", "config.yaml"), "artifacts_root: out\n")

	cfg, err := config.Load("", "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ArtifactsRoot != filepath.Join(dir, "out") {
		t.Fatalf("unexpected artifacts root %q", cfg.ArtifactsRoot)
	}
	if cfg.StateDir != filepath.Join(dir, "out", ".summarizer") {
		t.Fatalf("unexpected state dir %q", cfg.StateDir)
	}
	if cfg.DataIngestion.DownloadTimeoutSeconds != 300 {
		t.Fatalf("expected default timeout, got %d", cfg.DataIngestion.DownloadTimeoutSeconds)
	}
	if got := strings.Join(cfg.DataValidation.AllRequiredFiles, ","); got != "train,test,validation" {
		t.Fatalf("unexpected required files %q", got)
	}
	if !filepath.IsAbs(cfg.DataTransformation.DataPath) {
		t.Fatalf("expected absolute data path, got %q", cfg.DataTransformation.DataPath)
	}
	if cfg.ParamsPath != "" {
		t.Fatalf("expected no params path when params.yaml is absent, got %q", cfg.ParamsPath)
	}
}

func TestLoadRequiredFilesReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "data_validation:\n  all_required_files: [train, \" train \", \"\"]\n")

	cfg, err := config.Load(path, filepath.Join(dir, "params.yaml"), nil)
	if err == nil {
		t.Fatalf("expected error for explicit missing params file, got config %+v", cfg)
	}

	cfg, err = config.Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.DataValidation.AllRequiredFiles; len(got) != 1 || got[0] != "train" {
		t.Fatalf("unexpected required files %v", got)
	}
}

func TestLoadRequiredFilesShapes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	writeFile(t, path, "data_validation:\n  all_required_files: train\n")
	cfg, err := config.Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.DataValidation.AllRequiredFiles; len(got) != 1 || got[0] != "train" {
		t.Fatalf("expected single name as list, got %v", got)
	}

	writeFile(t, path, "data_validation:\n  all_required_files: null\n")
	cfg, err = config.Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := strings.Join(cfg.DataValidation.AllRequiredFiles, ","); got != "train,test,validation" {
		t.Fatalf("expected defaults for null list, got %q", got)
	}

	writeFile(t, path, "data_validation:\n  all_required_files:\n    - train\n    - {name: test}\n")
	_, err = config.Load(path, "", nil)
	if !errors.Is(err, configbox.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch for nested entry, got %v", err)
	}
	if !strings.Contains(err.Error(), "data_validation.all_required_files.1") {
		t.Fatalf("expected offending path in error, got %v", err)
	}
}

func TestLoadAppliesParamsOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	paramsPath := filepath.Join(dir, "params.yaml")
	writeFile(t, cfgPath, "data_transformation:\n  max_input_words: 50\n  max_target_words: 10\n")
	writeFile(t, paramsPath, "transformation:\n  max_target_words: 20\n  lowercase: true\n")

	cfg, err := config.Load(cfgPath, paramsPath, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DataTransformation.MaxInputWords != 50 {
		t.Fatalf("config value should survive when params omit it, got %d", cfg.DataTransformation.MaxInputWords)
	}
	if cfg.DataTransformation.MaxTargetWords != 20 {
		t.Fatalf("params should override max_target_words, got %d", cfg.DataTransformation.MaxTargetWords)
	}
	if !cfg.DataTransformation.Lowercase {
		t.Fatal("params should enable lowercase")
	}
	if cfg.ParamsPath != paramsPath {
		t.Fatalf("unexpected params path %q", cfg.ParamsPath)
	}
}

func TestLoadEmptyConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")
	_, err := config.Load(path, "", nil)
	if !errors.Is(err, configbox.ErrEmptyConfig) {
		t.Fatalf("expected ErrEmptyConfig, got %v", err)
	}
}

func TestLoadMissingConfigFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "", nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"timeout", func(c *config.Config) { c.DataIngestion.DownloadTimeoutSeconds = 0 }, "download_timeout_seconds"},
		{"scheme", func(c *config.Config) { c.DataIngestion.SourceURL = "ftp://example.com/data.zip" }, "unsupported scheme"},
		{"required files", func(c *config.Config) { c.DataValidation.AllRequiredFiles = nil }, "all_required_files"},
		{"input words", func(c *config.Config) { c.DataTransformation.MaxInputWords = -1 }, "max_input_words"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "not a url" }, "notifications.ntfy_topic"},
		{"ntfy timeout", func(c *config.Config) { c.Notifications.RequestTimeoutSeconds = -1 }, "request_timeout_seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config", "config.yaml")
	paramsPath := filepath.Join(dir, "params.yaml")
	if err := config.CreateSample(cfgPath); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSampleParams(paramsPath); err != nil {
		t.Fatalf("CreateSampleParams: %v", err)
	}
	cfg, err := config.Load(cfgPath, paramsPath, nil)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !strings.HasPrefix(cfg.DataIngestion.SourceURL, "https://") {
		t.Fatalf("unexpected sample source url %q", cfg.DataIngestion.SourceURL)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ArtifactsRoot = filepath.Join(dir, "artifacts")
	cfg.StateDir = filepath.Join(dir, "artifacts", ".summarizer")
	cfg.Logging.Dir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(nil); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, path := range []string{cfg.ArtifactsRoot, cfg.StateDir, cfg.Logging.Dir} {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", path, err)
		}
	}
}

func TestLoadDefaultsMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "artifacts_root: "+filepath.Join(dir, "out")+"\n")

	cfg, err := config.Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Textfile != filepath.Join(dir, "out", ".summarizer", "metrics.prom") {
		t.Fatalf("unexpected metrics config %+v", cfg.Metrics)
	}

	writeFile(t, path, "metrics:\n  enabled: false\n")
	cfg, err = config.Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Textfile != "" {
		t.Fatalf("disabled metrics should not get a textfile, got %+v", cfg.Metrics)
	}
}

func TestValidateRejectsBadSplitPattern(t *testing.T) {
	cfg := config.Default()
	cfg.DataTransformation.SplitPattern = "[unterminated"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "split_pattern") {
		t.Fatalf("expected split_pattern error, got %v", err)
	}
}
