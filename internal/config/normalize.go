package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeValidation()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds == 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyRequestTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.ArtifactsRoot) == "" {
		c.ArtifactsRoot = defaultArtifactsRoot
	}
	var err error
	if c.ArtifactsRoot, err = expandPath(c.ArtifactsRoot); err != nil {
		return fmt.Errorf("artifacts_root: %w", err)
	}
	if strings.TrimSpace(c.StateDir) == "" {
		c.StateDir = filepath.Join(c.ArtifactsRoot, defaultStateDirName)
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = filepath.Join(c.StateDir, defaultMetricsFileName)
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"state_dir", &c.StateDir},
		{"data_ingestion.root_dir", &c.DataIngestion.RootDir},
		{"data_ingestion.local_data_file", &c.DataIngestion.LocalDataFile},
		{"data_ingestion.unzip_dir", &c.DataIngestion.UnzipDir},
		{"data_validation.root_dir", &c.DataValidation.RootDir},
		{"data_validation.data_dir", &c.DataValidation.DataDir},
		{"data_validation.status_file", &c.DataValidation.StatusFile},
		{"data_transformation.root_dir", &c.DataTransformation.RootDir},
		{"data_transformation.data_path", &c.DataTransformation.DataPath},
		{"logging.dir", &c.Logging.Dir},
		{"metrics.textfile", &c.Metrics.Textfile},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	c.DataIngestion.SourceURL = strings.TrimSpace(c.DataIngestion.SourceURL)
	c.DataTransformation.SplitPattern = strings.TrimSpace(c.DataTransformation.SplitPattern)
	if c.DataTransformation.SplitPattern == "" {
		c.DataTransformation.SplitPattern = defaultSplitPattern
	}
	return nil
}

func (c *Config) normalizeValidation() {
	cleaned := make([]string, 0, len(c.DataValidation.AllRequiredFiles))
	seen := make(map[string]struct{}, len(c.DataValidation.AllRequiredFiles))
	for _, name := range c.DataValidation.AllRequiredFiles {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}
	c.DataValidation.AllRequiredFiles = cleaned
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
