// Package runmetrics exports the outcome of the latest pipeline run as a
// Prometheus textfile, suitable for the node_exporter textfile collector.
package runmetrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "summarizer"

// Stage is the outcome of one stage in the run.
type Stage struct {
	Name     string
	Success  bool
	Duration time.Duration
}

// Split holds per-split record counts from the transformation manifest.
type Split struct {
	Name    string
	Written int
	Dropped int
}

// Summary is everything exported for a run.
type Summary struct {
	RunID    string
	Success  bool
	Started  time.Time
	Finished time.Time
	Stages   []Stage
	Splits   []Split
}

// Write renders summary into a fresh registry and writes it to path. The
// file is replaced atomically so scrapers never read a partial file.
func Write(path string, summary Summary) error {
	registry := prometheus.NewRegistry()

	lastRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the latest pipeline run finished.",
	}, []string{"run_id"})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_success",
		Help:      "1 if the latest pipeline run completed every stage.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the latest pipeline run.",
	})
	stageDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall time of each stage in the latest run.",
	}, []string{"stage"})
	stageSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stage_success",
		Help:      "1 if the stage completed in the latest run.",
	}, []string{"stage"})
	splitRecords := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "split_records",
		Help:      "Records per transformed split, by outcome.",
	}, []string{"split", "outcome"})

	registry.MustRegister(lastRun, success, duration, stageDuration, stageSuccess, splitRecords)

	lastRun.WithLabelValues(summary.RunID).Set(float64(summary.Finished.Unix()))
	success.Set(boolGauge(summary.Success))
	if !summary.Started.IsZero() && !summary.Finished.IsZero() {
		duration.Set(summary.Finished.Sub(summary.Started).Seconds())
	}
	for _, s := range summary.Stages {
		stageDuration.WithLabelValues(s.Name).Set(s.Duration.Seconds())
		stageSuccess.WithLabelValues(s.Name).Set(boolGauge(s.Success))
	}
	for _, s := range summary.Splits {
		splitRecords.WithLabelValues(s.Name, "written").Set(float64(s.Written))
		splitRecords.WithLabelValues(s.Name, "dropped").Set(float64(s.Dropped))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
