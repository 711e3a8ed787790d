package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
	RunID            string
}

// RunFilePattern matches the per-run log files written by NewForRun.
const RunFilePattern = "summarizer-*.log"

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputs := defaultSlice(opts.OutputPaths, []string{"stdout"})
	outputWriter, err := openWriters(
		outputs,
		defaultSlice(opts.ErrorOutputPaths, []string{"stderr"}),
	)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format, err := resolveFormat(opts.Format, outputs)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	default:
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	}
	if runID := strings.TrimSpace(opts.RunID); runID != "" {
		// Attached before any group so grouped loggers keep run_id at the top level.
		handler = handler.WithAttrs([]slog.Attr{slog.String(FieldRunID, runID)})
	}

	return slog.New(handler), nil
}

// NewForRun creates a logger writing to stdout and to a timestamped file in
// dir. It returns the file path so callers can report it.
func NewForRun(level, format, dir, runID string, started time.Time) (*slog.Logger, string, error) {
	if strings.TrimSpace(dir) == "" {
		logger, err := New(Options{Level: level, Format: format, RunID: runID})
		return logger, "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("ensure log directory: %w", err)
	}
	stamp := started.UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(dir, fmt.Sprintf("summarizer-%s.log", stamp))
	logger, err := New(Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		RunID:            runID,
	})
	if err != nil {
		return nil, "", err
	}
	return logger, logPath, nil
}

func resolveFormat(value string, outputs []string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(value))
	switch format {
	case "", "console":
		return "console", nil
	case "json":
		return "json", nil
	case "auto":
		if writesToTerminal(outputs) {
			return "console", nil
		}
		return "json", nil
	default:
		return "", fmt.Errorf("log format: unsupported value %q", value)
	}
}

func writesToTerminal(outputs []string) bool {
	for _, out := range outputs {
		if strings.TrimSpace(out) != "stdout" {
			continue
		}
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(outputPaths []string, errorPaths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	combined := append([]string{}, outputPaths...)
	combined = append(combined, errorPaths...)

	for _, path := range combined {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		return os.Stdout, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
