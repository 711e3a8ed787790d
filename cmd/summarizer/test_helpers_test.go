package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsummarizer/internal/config"
	"textsummarizer/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceZip  string
	artifacts  string
}

// setupCLITestEnv writes a config whose paths all live under a temp dir and
// whose dataset source is a local zip, then chdirs there so the default
// params.yaml lookup stays inside the sandbox.
func setupCLITestEnv(t *testing.T, requiredFiles ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Chdir(base)

	sourceZip := filepath.Join(base, "upstream", "summarizer-data.zip")
	testsupport.WriteZip(t, sourceZip, testsupport.SampleDataset())

	if len(requiredFiles) == 0 {
		requiredFiles = []string{"train", "test", "validation"}
	}
	quoted := make([]string, len(requiredFiles))
	for i, name := range requiredFiles {
		quoted[i] = fmt.Sprintf("%q", name)
	}

	artifacts := filepath.Join(base, "artifacts")
	content := fmt.Sprintf(`artifacts_root: %[1]s
data_ingestion:
  root_dir: %[1]s/data_ingestion
  source_url: %[2]s
  local_data_file: %[1]s/data_ingestion/data.zip
  unzip_dir: %[1]s/data_ingestion
data_validation:
  root_dir: %[1]s/data_validation
  data_dir: %[1]s/data_ingestion/samsum_dataset
  status_file: %[1]s/data_validation/status.txt
  all_required_files: [%[3]s]
data_transformation:
  root_dir: %[1]s/data_transformation
  data_path: %[1]s/data_ingestion/samsum_dataset
logging:
  level: warn
  dir: %[4]s
`, artifacts, sourceZip, strings.Join(quoted, ", "), filepath.Join(base, "logs"))

	configPath := filepath.Join(base, "config", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		sourceZip:  sourceZip,
		artifacts:  artifacts,
	}
}

func (e *cliTestEnv) loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(e.configPath, "", nil)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func (e *cliTestEnv) appendConfig(t *testing.T, yaml string) {
	t.Helper()
	f, err := os.OpenFile(e.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(yaml); err != nil {
		t.Fatalf("append config: %v", err)
	}
}
