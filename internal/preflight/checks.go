package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sys/unix"

	"textsummarizer/internal/config"
	"textsummarizer/internal/fileutil"
)

// sourceCheckTimeout bounds the dataset reachability probe.
const sourceCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minBytes
// available. Missing path segments are resolved to their nearest existing parent.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	target := nearestExisting(path)
	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", target, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(available), target)
	if available < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSource verifies the dataset can be obtained: either the archive is
// already on disk or the configured source is reachable.
func CheckSource(ctx context.Context, cfg config.DataIngestion) Result {
	const name = "Dataset source"

	if exists, _ := fileutil.Exists(cfg.LocalDataFile); exists {
		size, err := fileutil.Size(cfg.LocalDataFile)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.LocalDataFile, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s already downloaded (%s)", cfg.LocalDataFile, size)}
	}

	source := strings.TrimSpace(cfg.SourceURL)
	if source == "" {
		return Result{Name: name, Detail: "no source_url configured and local_data_file is missing"}
	}

	parsed, err := url.Parse(source)
	if err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return checkRemoteSource(ctx, name, source)
	}

	localPath := source
	if err == nil && parsed.Scheme == "file" {
		localPath = parsed.Path
	}
	if _, statErr := os.Stat(localPath); statErr != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", localPath, statErr)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (local copy)", localPath)}
}

func checkRemoteSource(ctx context.Context, name, source string) Result {
	checkCtx, cancel := context.WithTimeout(ctx, sourceCheckTimeout)
	defer cancel()

	client := resty.New().SetTimeout(sourceCheckTimeout)
	resp, err := client.R().SetContext(checkCtx).Head(source)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}

	switch code := resp.StatusCode(); {
	case code >= 200 && code < 400, code == http.StatusMethodNotAllowed:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", source)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: HTTP %d)", source, code)}
	}
}

func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "reachability check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "reachability check timed out"
	}
	return err.Error()
}

func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
