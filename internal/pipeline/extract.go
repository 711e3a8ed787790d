package pipeline

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"textsummarizer/internal/services"
)

// extractZip unpacks archive into dest and returns the number of files
// written. Entries that would land outside dest are rejected.
func extractZip(ctx context.Context, archive, dest string) (int, error) {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return 0, services.WrapWithHint(services.ErrValidation, StageIngestion, "open archive",
			"Dataset archive is unreadable", "delete the archive so it is downloaded again", err)
	}
	defer reader.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, StageIngestion, "resolve unzip_dir", "Invalid extraction directory", err)
	}

	count := 0
	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		target, err := entryTarget(root, entry.Name)
		if err != nil {
			return count, err
		}
		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, services.Wrap(services.ErrExternalTool, StageIngestion, "extract archive", "Unable to create directory", err)
			}
			continue
		case mode&os.ModeSymlink != 0:
			return count, services.Wrap(services.ErrValidation, StageIngestion, "extract archive",
				fmt.Sprintf("Archive entry %q is a symlink", entry.Name), nil)
		}
		if err := extractEntry(entry, target); err != nil {
			return count, services.Wrap(services.ErrExternalTool, StageIngestion, "extract archive",
				fmt.Sprintf("Unable to extract %q", entry.Name), err)
		}
		count++
	}
	return count, nil
}

func entryTarget(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", services.Wrap(services.ErrValidation, StageIngestion, "extract archive",
			fmt.Sprintf("Archive entry %q escapes the extraction directory", name), nil)
	}
	return target, nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
