package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"textsummarizer/internal/config"
	"textsummarizer/internal/fileutil"
	"textsummarizer/internal/logging"
	"textsummarizer/internal/services"
	"textsummarizer/internal/stage"
)

const statusPrefix = "Validation status: "

// Validation checks that every required dataset entry was extracted.
type Validation struct {
	cfg    config.DataValidation
	logger *slog.Logger
}

// NewValidation constructs the validation stage handler.
func NewValidation(cfg *config.Config, logger *slog.Logger) *Validation {
	return &Validation{
		cfg:    cfg.DataValidation,
		logger: logging.NewComponentLogger(logger, "validation"),
	}
}

// SetLogger replaces the stage logger.
func (v *Validation) SetLogger(logger *slog.Logger) {
	v.logger = logging.NewComponentLogger(logger, "validation")
}

// HealthCheck reports whether the dataset directory exists yet.
func (v *Validation) HealthCheck(context.Context) stage.Health {
	if ok, _ := fileutil.Exists(v.cfg.DataDir); !ok {
		return stage.Unhealthy(StageValidation, "dataset directory not extracted: "+v.cfg.DataDir)
	}
	return stage.Healthy(StageValidation)
}

// Execute writes the validation status file and fails when any required
// entry is missing.
func (v *Validation) Execute(context.Context) error {
	if err := fileutil.CreateDirectories([]string{v.cfg.RootDir, filepath.Dir(v.cfg.StatusFile)}, true, v.logger); err != nil {
		return services.Wrap(services.ErrConfiguration, StageValidation, "create directories", "Unable to create validation directories", err)
	}

	present, err := listEntries(v.cfg.DataDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageValidation, "list dataset", "Unable to read dataset directory", err)
	}
	missing := missingEntries(v.cfg.AllRequiredFiles, present)
	ok := len(missing) == 0

	if err := WriteStatus(v.cfg.StatusFile, ok); err != nil {
		return services.Wrap(services.ErrExternalTool, StageValidation, "write status", "Unable to write validation status", err)
	}

	if !ok {
		v.logger.Warn("required dataset files missing",
			logging.String("missing", strings.Join(missing, ", ")),
			logging.String(logging.FieldPath, v.cfg.DataDir),
			logging.String(logging.FieldEventType, "validation_failed"),
			logging.String(logging.FieldErrorHint, "rerun data_ingestion or adjust data_validation.all_required_files"),
			logging.String(logging.FieldImpact, "transformation will not run"),
			logging.Alert("dataset_incomplete"),
		)
		return services.WrapWithHint(services.ErrValidation, StageValidation, "check required files",
			fmt.Sprintf("Missing required dataset files: %s", strings.Join(missing, ", ")),
			"rerun data_ingestion or adjust data_validation.all_required_files", nil)
	}

	v.logger.Info("dataset validated",
		logging.Int("required", len(v.cfg.AllRequiredFiles)),
		logging.String("status_file", v.cfg.StatusFile),
		logging.String(logging.FieldEventType, "validation_passed"),
	)
	return nil
}

func listEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// missingEntries returns the required names with no matching entry. A name
// matches an entry exactly or with the entry's extension removed.
func missingEntries(required, present []string) []string {
	available := make(map[string]struct{}, len(present)*2)
	for _, name := range present {
		available[name] = struct{}{}
		available[strings.TrimSuffix(name, filepath.Ext(name))] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// WriteStatus records the validation outcome as "Validation status: <bool>".
func WriteStatus(path string, ok bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(statusPrefix+strconv.FormatBool(ok)+"\n"), 0o644)
}

// ReadStatus parses a status file written by WriteStatus.
func ReadStatus(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%s: empty status file", path)
	}
	line := strings.TrimSpace(scanner.Text())
	value, found := strings.CutPrefix(line, statusPrefix)
	if !found {
		return false, fmt.Errorf("%s: unexpected status line %q", path, line)
	}
	ok, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return ok, nil
}
