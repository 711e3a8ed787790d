package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SplitStats summarizes one transformed split.
type SplitStats struct {
	Name             string `json:"name"`
	Path             string `json:"path"`
	RecordsRead      int    `json:"records_read"`
	RecordsWritten   int    `json:"records_written"`
	RecordsDropped   int    `json:"records_dropped"`
	TruncatedInputs  int    `json:"truncated_inputs"`
	TruncatedTargets int    `json:"truncated_targets"`
	Bytes            int64  `json:"bytes"`
	Size             string `json:"size"`
}

// Manifest describes the output of a transformation run.
type Manifest struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	Source         string       `json:"source"`
	MaxInputWords  int          `json:"max_input_words"`
	MaxTargetWords int          `json:"max_target_words"`
	Lowercase      bool         `json:"lowercase"`
	Splits         []SplitStats `json:"splits"`
}

// TotalRecords sums written records across splits.
func (m Manifest) TotalRecords() int {
	total := 0
	for _, s := range m.Splits {
		total += s.RecordsWritten
	}
	return total
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadManifest loads the manifest from a transformation root directory.
func ReadManifest(rootDir string) (Manifest, error) {
	path := filepath.Join(rootDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
