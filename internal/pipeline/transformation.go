package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"

	"textsummarizer/internal/config"
	"textsummarizer/internal/fileutil"
	"textsummarizer/internal/logging"
	"textsummarizer/internal/services"
	"textsummarizer/internal/stage"
)

// ManifestFile is written to the transformation root after every run.
const ManifestFile = "manifest.json"

const maxLineBytes = 16 << 20

// Transformation normalizes each dataset split into model-ready JSONL.
type Transformation struct {
	cfg        config.DataTransformation
	statusFile string
	logger     *slog.Logger
	now        func() time.Time
}

// NewTransformation constructs the transformation stage handler.
func NewTransformation(cfg *config.Config, logger *slog.Logger) *Transformation {
	return &Transformation{
		cfg:        cfg.DataTransformation,
		statusFile: cfg.DataValidation.StatusFile,
		logger:     logging.NewComponentLogger(logger, "transformation"),
		now:        time.Now,
	}
}

// SetLogger replaces the stage logger.
func (t *Transformation) SetLogger(logger *slog.Logger) {
	t.logger = logging.NewComponentLogger(logger, "transformation")
}

// HealthCheck reports whether any split files are available.
func (t *Transformation) HealthCheck(context.Context) stage.Health {
	splits, err := t.findSplits()
	if err != nil {
		return stage.Unhealthy(StageTransformation, err.Error())
	}
	if len(splits) == 0 {
		return stage.Unhealthy(StageTransformation, "no split files found in "+t.cfg.DataPath)
	}
	return stage.Healthy(StageTransformation)
}

// Execute transforms every split and writes the manifest.
func (t *Transformation) Execute(ctx context.Context) error {
	if err := fileutil.CreateDirectories([]string{t.cfg.RootDir}, true, t.logger); err != nil {
		return services.Wrap(services.ErrConfiguration, StageTransformation, "create directories", "Unable to create transformation directory", err)
	}
	if err := t.checkValidation(); err != nil {
		return err
	}

	splits, err := t.findSplits()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageTransformation, "find splits", "Unable to list dataset splits", err)
	}
	if len(splits) == 0 {
		return services.WrapWithHint(services.ErrValidation, StageTransformation, "find splits",
			fmt.Sprintf("No files matching %q in %s", t.cfg.SplitPattern, t.cfg.DataPath),
			"run data_ingestion first or check data_transformation.split_pattern", nil)
	}

	norm := newNormalizer(t.cfg.MaxInputWords, t.cfg.MaxTargetWords, t.cfg.Lowercase)
	manifest := Manifest{
		GeneratedAt:    t.now().UTC(),
		Source:         t.cfg.DataPath,
		MaxInputWords:  t.cfg.MaxInputWords,
		MaxTargetWords: t.cfg.MaxTargetWords,
		Lowercase:      t.cfg.Lowercase,
	}
	for _, rel := range splits {
		stats, err := t.transformSplit(ctx, norm, rel)
		if err != nil {
			return err
		}
		t.logger.Info("split transformed",
			logging.String("split", stats.Name),
			logging.Int("records_read", stats.RecordsRead),
			logging.Int("records_written", stats.RecordsWritten),
			logging.Int("records_dropped", stats.RecordsDropped),
			logging.String("size", stats.Size),
			logging.String(logging.FieldEventType, "split_transformed"),
		)
		manifest.Splits = append(manifest.Splits, stats)
	}

	manifestPath := filepath.Join(t.cfg.RootDir, ManifestFile)
	if err := writeManifest(manifestPath, manifest); err != nil {
		return services.Wrap(services.ErrExternalTool, StageTransformation, "write manifest", "Unable to write manifest", err)
	}
	t.logger.Info("transformation manifest written",
		logging.String(logging.FieldPath, manifestPath),
		logging.Int("splits", len(manifest.Splits)),
		logging.Int("records", manifest.TotalRecords()),
		logging.String(logging.FieldEventType, "manifest_written"),
	)
	return nil
}

// checkValidation refuses to run after a failed validation. A missing status
// file only warns so the stage can run on its own.
func (t *Transformation) checkValidation() error {
	if t.statusFile == "" {
		return nil
	}
	ok, err := ReadStatus(t.statusFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logging.WarnWithContext(t.logger, "validation status missing", "validation_status_missing",
			logging.String(logging.FieldPath, t.statusFile),
			logging.String(logging.FieldErrorHint, "run data_validation before data_transformation"),
			logging.String(logging.FieldImpact, "transforming without a validated dataset"),
		)
		return nil
	case err != nil:
		return services.Wrap(services.ErrValidation, StageTransformation, "read validation status", "Validation status file is unreadable", err)
	case !ok:
		return services.WrapWithHint(services.ErrValidation, StageTransformation, "read validation status",
			"Dataset failed validation", "rerun data_validation after fixing the dataset", nil)
	}
	return nil
}

func (t *Transformation) findSplits() ([]string, error) {
	if _, err := os.Stat(t.cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(t.cfg.DataPath), t.cfg.SplitPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (t *Transformation) transformSplit(ctx context.Context, norm normalizer, rel string) (SplitStats, error) {
	src := filepath.Join(t.cfg.DataPath, filepath.FromSlash(rel))
	dst := filepath.Join(t.cfg.RootDir, filepath.FromSlash(rel))
	stats := SplitStats{Name: strings.TrimSuffix(rel, filepath.Ext(rel)), Path: dst}

	in, err := os.Open(src)
	if err != nil {
		return stats, services.Wrap(services.ErrExternalTool, StageTransformation, "open split", "Unable to open "+rel, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return stats, services.Wrap(services.ErrExternalTool, StageTransformation, "create output", "Unable to create output directory", err)
	}
	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return stats, services.Wrap(services.ErrExternalTool, StageTransformation, "create output", "Unable to create "+rel, err)
	}
	writer := bufio.NewWriter(out)
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)

	fail := func(err error) (SplitStats, error) {
		_ = out.Close()
		_ = os.Remove(tmp)
		return stats, err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, err := parseRecord(line)
		if err != nil {
			return fail(services.WrapWithHint(services.ErrValidation, StageTransformation, "parse record",
				fmt.Sprintf("%s:%d: %v", rel, lineNo, err), "fix or remove the malformed line", nil))
		}
		stats.RecordsRead++

		result := norm.apply(record)
		if !result.keep {
			stats.RecordsDropped++
			continue
		}
		if result.truncatedInput {
			stats.TruncatedInputs++
		}
		if result.truncatedTarget {
			stats.TruncatedTargets++
		}
		if err := enc.Encode(result.record); err != nil {
			return fail(services.Wrap(services.ErrExternalTool, StageTransformation, "write record", "Unable to write "+rel, err))
		}
		stats.RecordsWritten++
	}
	if err := scanner.Err(); err != nil {
		return fail(services.Wrap(services.ErrValidation, StageTransformation, "read split", fmt.Sprintf("%s:%d: read failed", rel, lineNo+1), err))
	}
	if err := writer.Flush(); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, StageTransformation, "write record", "Unable to flush "+rel, err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return stats, services.Wrap(services.ErrExternalTool, StageTransformation, "write record", "Unable to close "+rel, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return stats, services.Wrap(services.ErrExternalTool, StageTransformation, "write record", "Unable to finalize "+rel, err)
	}

	if info, err := os.Stat(dst); err == nil {
		stats.Bytes = info.Size()
	}
	if size, err := fileutil.Size(dst); err == nil {
		stats.Size = size
	}
	return stats, nil
}

func parseRecord(line string) (Record, error) {
	if !gjson.Valid(line) {
		return Record{}, errors.New("malformed JSON")
	}
	parsed := gjson.Parse(line)
	if !parsed.IsObject() {
		return Record{}, errors.New("record is not a JSON object")
	}
	fields := gjson.GetMany(line, "id", "dialogue", "summary")
	for i, name := range []string{"dialogue", "summary"} {
		if f := fields[i+1]; f.Exists() && f.Type != gjson.String && f.Type != gjson.Null {
			return Record{}, fmt.Errorf("field %q must be a string", name)
		}
	}
	return Record{
		ID:       fields[0].String(),
		Dialogue: fields[1].String(),
		Summary:  fields[2].String(),
	}, nil
}
