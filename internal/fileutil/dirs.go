package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"textsummarizer/internal/logging"
)

// CreateDirectories ensures every path exists, creating missing parents.
// Existing directories are not an error. When verbose is set each path is
// logged after it is ensured. The first failure stops the loop.
func CreateDirectories(paths []string, verbose bool, logger *slog.Logger) error {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", path, err)
		}
		if verbose && logger != nil {
			logger.Info("directory created",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldEventType, "directory_created"),
			)
		}
	}
	return nil
}
