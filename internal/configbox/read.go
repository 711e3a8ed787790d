package configbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"textsummarizer/internal/logging"
)

// ReadYAML parses the YAML file at path into a Box.
//
// An empty, comment-only, or null document yields ErrEmptyConfig. Open and
// parse failures are returned unchanged.
func ReadYAML(path string, logger *slog.Logger) (*Box, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	box, err := Parse(data)
	if err != nil {
		if errors.Is(err, ErrEmptyConfig) || errors.Is(err, ErrNotMapping) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	if logger != nil {
		logger.Info("yaml file loaded",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "yaml_loaded"),
			logging.Int("keys", len(box.data)),
		)
	}
	return box, nil
}

// Parse decodes a single YAML document from data.
func Parse(data []byte) (*Box, error) {
	var content any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&content); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyConfig
		}
		return nil, err
	}
	if content == nil {
		return nil, ErrEmptyConfig
	}
	mapping, ok := normalize(content).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T", ErrNotMapping, content)
	}
	return &Box{data: mapping}, nil
}

// normalize converts yaml.v3 output into map[string]any / []any trees so
// lookups never see map[any]any.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalize(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalize(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalize(v)
		}
		return out
	default:
		return value
	}
}
