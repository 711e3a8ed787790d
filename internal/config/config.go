package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"textsummarizer/internal/configbox"
	"textsummarizer/internal/fileutil"
	"textsummarizer/internal/logging"
)

//go:embed sample_config.yaml
var sampleConfig string

//go:embed sample_params.yaml
var sampleParams string

// DataIngestion locates the raw dataset archive and where it is extracted.
type DataIngestion struct {
	RootDir                string `yaml:"root_dir" validate:"required"`
	SourceURL              string `yaml:"source_url"`
	LocalDataFile          string `yaml:"local_data_file" validate:"required"`
	UnzipDir               string `yaml:"unzip_dir" validate:"required"`
	DownloadTimeoutSeconds int    `yaml:"download_timeout_seconds" validate:"gt=0"`
}

// DataValidation lists the dataset entries that must exist after ingestion.
type DataValidation struct {
	RootDir          string   `yaml:"root_dir" validate:"required"`
	DataDir          string   `yaml:"data_dir" validate:"required"`
	StatusFile       string   `yaml:"status_file" validate:"required"`
	AllRequiredFiles []string `yaml:"all_required_files" validate:"min=1,dive,required"`
}

// DataTransformation controls record normalization.
type DataTransformation struct {
	RootDir        string `yaml:"root_dir" validate:"required"`
	DataPath       string `yaml:"data_path" validate:"required"`
	SplitPattern   string `yaml:"split_pattern" validate:"required"`
	MaxInputWords  int    `yaml:"max_input_words" validate:"gt=0"`
	MaxTargetWords int    `yaml:"max_target_words" validate:"gt=0"`
	Lowercase      bool   `yaml:"lowercase"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level         string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format        string `yaml:"format" validate:"oneof=console json auto"`
	Dir           string `yaml:"dir" validate:"required"`
	RetentionDays int    `yaml:"retention_days" validate:"gte=0"`
}

// Metrics controls the Prometheus textfile written after each run.
type Metrics struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// Notifications configures the ntfy topic told about finished runs.
type Notifications struct {
	NtfyTopic             string `yaml:"ntfy_topic" validate:"omitempty,http_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" validate:"gte=0"`
	NotifyOnSuccess       bool   `yaml:"notify_on_success"`
}

// TransformationParams are the params.yaml overrides for DataTransformation.
// Nil fields leave the config.yaml value in place.
type TransformationParams struct {
	MaxInputWords  *int  `yaml:"max_input_words"`
	MaxTargetWords *int  `yaml:"max_target_words"`
	Lowercase      *bool `yaml:"lowercase"`
}

// Params mirrors params.yaml.
type Params struct {
	Transformation TransformationParams `yaml:"transformation"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Sections:
//   - ArtifactsRoot/StateDir: where stage outputs, run history, and the run lock live
//   - DataIngestion: dataset source and extraction target
//   - DataValidation: required dataset entries and the status file
//   - DataTransformation: record normalization limits
//   - Logging: log format, level, directory, and retention
//   - Metrics: Prometheus textfile export of run results
//   - Notifications: optional ntfy delivery of run outcomes
type Config struct {
	ArtifactsRoot      string             `yaml:"artifacts_root" validate:"required"`
	StateDir           string             `yaml:"state_dir"`
	DataIngestion      DataIngestion      `yaml:"data_ingestion"`
	DataValidation     DataValidation     `yaml:"data_validation"`
	DataTransformation DataTransformation `yaml:"data_transformation"`
	Logging            Logging            `yaml:"logging"`
	Metrics            Metrics            `yaml:"metrics"`
	Notifications      Notifications      `yaml:"notifications"`

	Params     Params `yaml:"-" validate:"-"`
	Path       string `yaml:"-" validate:"-"`
	ParamsPath string `yaml:"-" validate:"-"`
}

// DefaultConfigPath returns the conventional project config location.
func DefaultConfigPath() string {
	return filepath.Join("config", "config.yaml")
}

// DefaultParamsPath returns the conventional params file location.
func DefaultParamsPath() string {
	return "params.yaml"
}

// Load reads config.yaml and params.yaml, applies defaults, and validates the
// result. The config file must exist; a missing params file keeps defaults.
func Load(configPath, paramsPath string, logger *slog.Logger) (*Config, error) {
	if strings.TrimSpace(configPath) == "" {
		configPath = DefaultConfigPath()
	}
	resolved, err := expandPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	box, err := configbox.ReadYAML(resolved, logger)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	requiredFiles, err := requiredFilesFrom(box)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	cfg := Default()
	if err := box.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	// Slices decode over existing elements; the looked-up list replaces them.
	cfg.DataValidation.AllRequiredFiles = requiredFiles
	cfg.Path = resolved

	if err := cfg.loadParams(paramsPath, logger); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// requiredFilesFrom reads data_validation.all_required_files. A single name
// is accepted in place of a list; an unset or null key yields the defaults.
func requiredFilesFrom(box *configbox.Box) ([]string, error) {
	const key = "data_validation.all_required_files"
	if value, ok := box.Get(key); !ok || value == nil {
		return append([]string(nil), defaultRequiredFiles...), nil
	}
	return box.Strings(key)
}

func (c *Config) loadParams(paramsPath string, logger *slog.Logger) error {
	explicit := strings.TrimSpace(paramsPath) != ""
	if !explicit {
		paramsPath = DefaultParamsPath()
	}
	resolved, err := expandPath(paramsPath)
	if err != nil {
		return fmt.Errorf("resolve params path: %w", err)
	}

	box, err := configbox.ReadYAML(resolved, logger)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			if logger != nil {
				logger.Debug("params file not found; using defaults", logging.String(logging.FieldPath, resolved))
			}
			return nil
		}
		return fmt.Errorf("read params: %w", err)
	}
	if err := box.Decode(&c.Params); err != nil {
		return fmt.Errorf("parse params %s: %w", resolved, err)
	}
	c.ParamsPath = resolved
	c.applyParams()
	return nil
}

func (c *Config) applyParams() {
	p := c.Params.Transformation
	if p.MaxInputWords != nil {
		c.DataTransformation.MaxInputWords = *p.MaxInputWords
	}
	if p.MaxTargetWords != nil {
		c.DataTransformation.MaxTargetWords = *p.MaxTargetWords
	}
	if p.Lowercase != nil {
		c.DataTransformation.Lowercase = *p.Lowercase
	}
}

// EnsureDirectories creates the artifacts root, state, and log directories.
func (c *Config) EnsureDirectories(logger *slog.Logger) error {
	return fileutil.CreateDirectories([]string{c.ArtifactsRoot, c.StateDir, c.Logging.Dir}, true, logger)
}

// HistoryDBPath returns the SQLite run history location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.StateDir, "runs.db")
}

// LockPath returns the file lock that serializes pipeline runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir, "pipeline.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample config.yaml to path.
func CreateSample(path string) error {
	return writeSample(path, sampleConfig)
}

// CreateSampleParams writes a sample params.yaml to path.
func CreateSampleParams(path string) error {
	return writeSample(path, sampleParams)
}

func writeSample(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
