package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textsummarizer/internal/pipeline"
	"textsummarizer/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := runCLI(t, []string{"config", "init"}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Wrote sample parameters")
	for _, path := range []string{filepath.Join(dir, "config", "config.yaml"), filepath.Join(dir, "params.yaml")} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}

	if _, _, err := runCLI(t, []string{"config", "init"}, ""); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing config error, got %v", err)
	}
	out, _, err = runCLI(t, []string{"config", "init", "--overwrite"}, "")
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	requireContains(t, out, "Wrote sample parameters")

	out, _, err = runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "params.yaml")
}

func TestConfigValidateMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, []string{"config", "validate"}, "")
	if err == nil {
		t.Fatal("expected error without config file")
	}
}

func TestStagesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stages"}, env.configPath)
	if err != nil {
		t.Fatalf("stages: %v", err)
	}
	for _, name := range pipeline.Names() {
		requireContains(t, out, name)
	}
	requireContains(t, out, "Data Ingestion")
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, _, err := runCLI(t, []string{"history", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestSizeCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "data.bin")
	testsupport.WriteFile(t, path, 1536)

	out, _, err := runCLI(t, []string{"size", path}, "")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	requireContains(t, out, "~2 KB")

	out, _, err = runCLI(t, []string{"size", "--human", path}, "")
	if err != nil {
		t.Fatalf("size --human: %v", err)
	}
	requireContains(t, out, "1.5 KiB")

	if _, _, err := runCLI(t, []string{"size", filepath.Join(t.TempDir(), "missing")}, ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDirsCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	base := t.TempDir()
	paths := []string{filepath.Join(base, "a", "b"), filepath.Join(base, "c")}

	if _, _, err := runCLI(t, append([]string{"dirs", "--quiet"}, paths...), ""); err != nil {
		t.Fatalf("dirs: %v", err)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", p, err)
		}
	}
	if _, _, err := runCLI(t, append([]string{"dirs"}, paths...), ""); err != nil {
		t.Fatalf("dirs on existing paths: %v", err)
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"completed":   "Completed",
		"interrupted": "Interrupted",
		"not_started": "Not Started",
		"":            "",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}
