package testsupport

import (
	"path/filepath"
	"testing"

	"textsummarizer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every path lives under one temp root so stages never touch the working tree.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	artifacts := filepath.Join(base, "artifacts")
	ingestion := filepath.Join(artifacts, "data_ingestion")
	dataset := filepath.Join(ingestion, "samsum_dataset")

	cfgVal := config.Default()
	cfgVal.ArtifactsRoot = artifacts
	cfgVal.StateDir = filepath.Join(artifacts, ".summarizer")
	cfgVal.DataIngestion.RootDir = ingestion
	cfgVal.DataIngestion.LocalDataFile = filepath.Join(ingestion, "data.zip")
	cfgVal.DataIngestion.UnzipDir = ingestion
	cfgVal.DataValidation.RootDir = filepath.Join(artifacts, "data_validation")
	cfgVal.DataValidation.DataDir = dataset
	cfgVal.DataValidation.StatusFile = filepath.Join(artifacts, "data_validation", "status.txt")
	cfgVal.DataTransformation.RootDir = filepath.Join(artifacts, "data_transformation")
	cfgVal.DataTransformation.DataPath = dataset
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceURL sets the ingestion download source.
func WithSourceURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataIngestion.SourceURL = url
	}
}

// WithRequiredFiles overrides the validation required-file list.
func WithRequiredFiles(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataValidation.AllRequiredFiles = append([]string(nil), names...)
	}
}

// WithWordLimits overrides the transformation truncation limits.
func WithWordLimits(input, target int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataTransformation.MaxInputWords = input
		b.cfg.DataTransformation.MaxTargetWords = target
	}
}

// WithLowercase toggles transformation lowercasing.
func WithLowercase(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DataTransformation.Lowercase = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.ArtifactsRoot)
}
