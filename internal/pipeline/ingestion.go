package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/otiai10/copy"
	"github.com/schollz/progressbar/v3"

	"textsummarizer/internal/config"
	"textsummarizer/internal/fileutil"
	"textsummarizer/internal/logging"
	"textsummarizer/internal/services"
	"textsummarizer/internal/stage"
)

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceRemote
	sourceFile
	sourceDir
)

// Ingestion fetches the dataset archive and extracts it into unzip_dir.
type Ingestion struct {
	cfg      config.DataIngestion
	logger   *slog.Logger
	client   *resty.Client
	progress io.Writer
}

// NewIngestion constructs the ingestion stage handler.
func NewIngestion(cfg *config.Config, logger *slog.Logger) *Ingestion {
	timeout := time.Duration(cfg.DataIngestion.DownloadTimeoutSeconds) * time.Second
	return &Ingestion{
		cfg:    cfg.DataIngestion,
		logger: logging.NewComponentLogger(logger, "ingestion"),
		client: resty.New().SetTimeout(timeout),
	}
}

// SetLogger replaces the stage logger.
func (i *Ingestion) SetLogger(logger *slog.Logger) {
	i.logger = logging.NewComponentLogger(logger, "ingestion")
}

// SetProgressOutput enables a download progress bar written to w.
func (i *Ingestion) SetProgressOutput(w io.Writer) {
	i.progress = w
}

// HealthCheck reports whether a dataset can be obtained without running.
func (i *Ingestion) HealthCheck(context.Context) stage.Health {
	if ok, _ := fileutil.Exists(i.cfg.LocalDataFile); ok {
		return stage.Healthy(StageIngestion)
	}
	if strings.TrimSpace(i.cfg.SourceURL) == "" {
		return stage.Unhealthy(StageIngestion, "no source_url configured and local_data_file is missing")
	}
	return stage.Healthy(StageIngestion)
}

// Execute downloads (or copies) the dataset archive when it is not already
// present and extracts it.
func (i *Ingestion) Execute(ctx context.Context) error {
	if err := fileutil.CreateDirectories([]string{i.cfg.RootDir, i.cfg.UnzipDir}, true, i.logger); err != nil {
		return services.Wrap(services.ErrConfiguration, StageIngestion, "create directories", "Unable to create ingestion directories", err)
	}

	kind, location := classifySource(i.cfg.SourceURL)
	if kind == sourceDir {
		return i.copyDirectory(location)
	}

	exists, err := fileutil.Exists(i.cfg.LocalDataFile)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageIngestion, "stat archive", "Unable to inspect local_data_file", err)
	}
	if exists {
		size, sizeErr := fileutil.Size(i.cfg.LocalDataFile)
		if sizeErr != nil {
			return services.Wrap(services.ErrConfiguration, StageIngestion, "stat archive", "Unable to read archive size", sizeErr)
		}
		i.logger.Info("file already exists",
			logging.String(logging.FieldPath, i.cfg.LocalDataFile),
			logging.String("size", size),
			logging.String(logging.FieldEventType, "download_skipped"),
		)
	} else {
		switch kind {
		case sourceRemote:
			err = i.download(ctx, location)
		case sourceFile:
			err = i.copyArchive(location)
		default:
			err = services.WrapWithHint(services.ErrConfiguration, StageIngestion, "resolve source",
				"No dataset source configured", "set data_ingestion.source_url or place the archive at data_ingestion.local_data_file", nil)
		}
		if err != nil {
			return err
		}
	}

	if err := verifyArchive(i.cfg.LocalDataFile); err != nil {
		return err
	}
	count, err := extractZip(ctx, i.cfg.LocalDataFile, i.cfg.UnzipDir)
	if err != nil {
		return err
	}
	i.logger.Info("archive extracted",
		logging.String(logging.FieldPath, i.cfg.UnzipDir),
		logging.Int("files", count),
		logging.String(logging.FieldEventType, "archive_extracted"),
	)
	return nil
}

func classifySource(raw string) (sourceKind, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sourceNone, ""
	}
	location := raw
	if parsed, err := url.Parse(raw); err == nil {
		switch parsed.Scheme {
		case "http", "https":
			return sourceRemote, raw
		case "file":
			location = parsed.Path
		}
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return sourceDir, location
	}
	return sourceFile, location
}

func (i *Ingestion) download(ctx context.Context, source string) error {
	i.logger.Info("downloading dataset",
		logging.String("source_url", source),
		logging.String(logging.FieldPath, i.cfg.LocalDataFile),
		logging.String(logging.FieldEventType, "download_started"),
	)

	resp, err := i.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(source)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.WrapWithHint(marker, StageIngestion, "download dataset", "Dataset request failed",
			"check network access to data_ingestion.source_url or raise download_timeout_seconds", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if code := resp.StatusCode(); code >= 300 {
		marker := services.ErrExternalTool
		switch {
		case code == 404:
			marker = services.ErrNotFound
		case code >= 500:
			marker = services.ErrTransient
		}
		return services.Wrap(marker, StageIngestion, "download dataset", fmt.Sprintf("Dataset server returned HTTP %d", code), nil)
	}

	var sink io.Writer = io.Discard
	if i.progress != nil {
		bar := progressbar.NewOptions64(resp.RawResponse.ContentLength,
			progressbar.OptionSetWriter(i.progress),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		sink = bar
	}

	written, err := writeAtomically(i.cfg.LocalDataFile, io.TeeReader(body, sink))
	if err != nil {
		return services.Wrap(services.ErrTransient, StageIngestion, "download dataset", "Failed to save dataset archive", err)
	}
	i.logger.Info("file downloaded",
		logging.String(logging.FieldPath, i.cfg.LocalDataFile),
		logging.String("size", humanize.IBytes(uint64(written))),
		logging.Int64("bytes", written),
		logging.String(logging.FieldEventType, "download_complete"),
	)
	return nil
}

func (i *Ingestion) copyArchive(source string) error {
	written, err := fileutil.CopyFileVerified(source, i.cfg.LocalDataFile)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, StageIngestion, "copy dataset", "Unable to copy local dataset archive", err)
	}
	i.logger.Info("file copied",
		logging.String("source", source),
		logging.String(logging.FieldPath, i.cfg.LocalDataFile),
		logging.String("size", humanize.IBytes(uint64(written))),
		logging.String(logging.FieldEventType, "download_complete"),
	)
	return nil
}

func (i *Ingestion) copyDirectory(source string) error {
	if err := copy.Copy(source, i.cfg.UnzipDir, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Skip },
	}); err != nil {
		return services.Wrap(services.ErrExternalTool, StageIngestion, "copy dataset", "Unable to copy dataset directory", err)
	}
	i.logger.Info("dataset directory copied",
		logging.String("source", source),
		logging.String(logging.FieldPath, i.cfg.UnzipDir),
		logging.String(logging.FieldEventType, "dataset_copied"),
	)
	return nil
}

// verifyArchive sniffs the archive content so an HTML error page saved in
// place of the dataset fails with a clear message instead of a zip error.
func verifyArchive(path string) error {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageIngestion, "inspect archive", "Unable to read dataset archive", err)
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return nil
		}
	}
	return services.WrapWithHint(services.ErrValidation, StageIngestion, "inspect archive",
		fmt.Sprintf("Dataset archive is %s, not a zip file", detected.String()),
		"delete "+filepath.Base(path)+" and check data_ingestion.source_url", nil)
}

func writeAtomically(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		return written, errors.Join(copyErr, closeErr)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return written, err
	}
	return written, nil
}
