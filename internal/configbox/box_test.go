package configbox_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"textsummarizer/internal/configbox"
)

const sampleDocument = `
artifacts_root: artifacts
data_ingestion:
  root_dir: artifacts/data_ingestion
  source_url: https://example.com/data.zip
  retries: 3
  ratio: 0.5
  enabled: true
  timeout: 45s
data_validation:
  all_required_files: [train, test, validation]
nested:
  - name: first
    size: 1
  - name: second
    size: 2
1: numeric key
`

func mustParse(t *testing.T, doc string) *configbox.Box {
	t.Helper()
	box, err := configbox.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return box
}

func TestBoxLookupsMatchDocument(t *testing.T) {
	box := mustParse(t, sampleDocument)

	if got, _ := box.String("artifacts_root"); got != "artifacts" {
		t.Fatalf("artifacts_root = %q", got)
	}
	if got, _ := box.String("data_ingestion.root_dir"); got != "artifacts/data_ingestion" {
		t.Fatalf("data_ingestion.root_dir = %q", got)
	}
	if got, _ := box.Int("data_ingestion.retries"); got != 3 {
		t.Fatalf("retries = %d", got)
	}
	if got, _ := box.Float("data_ingestion.ratio"); got != 0.5 {
		t.Fatalf("ratio = %v", got)
	}
	if got, _ := box.Bool("data_ingestion.enabled"); !got {
		t.Fatal("enabled should be true")
	}
	if got, _ := box.Duration("data_ingestion.timeout"); got != 45*time.Second {
		t.Fatalf("timeout = %v", got)
	}
	files, err := box.Strings("data_validation.all_required_files")
	if err != nil {
		t.Fatalf("Strings returned error: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"train", "test", "validation"}) {
		t.Fatalf("all_required_files = %v", files)
	}
	if got, _ := box.String("nested.1.name"); got != "second" {
		t.Fatalf("nested.1.name = %q", got)
	}
	if got, _ := box.String("1"); got != "numeric key" {
		t.Fatalf("numeric key = %q", got)
	}
	if got, _ := box.String("data_ingestion.retries"); got != "3" {
		t.Fatalf("numbers should render as strings, got %q", got)
	}
}

func TestBoxSubAndKeys(t *testing.T) {
	box := mustParse(t, sampleDocument)

	sub, err := box.Sub("data_ingestion")
	if err != nil {
		t.Fatalf("Sub returned error: %v", err)
	}
	want := []string{"enabled", "ratio", "retries", "root_dir", "source_url", "timeout"}
	if !reflect.DeepEqual(sub.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", sub.Keys(), want)
	}
	if got := sub.StringOr("missing", "fallback"); got != "fallback" {
		t.Fatalf("StringOr fallback = %q", got)
	}
	if _, err := box.Sub("artifacts_root"); !errors.Is(err, configbox.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch for scalar Sub, got %v", err)
	}
}

func TestBoxLookupErrors(t *testing.T) {
	box := mustParse(t, sampleDocument)

	_, err := box.String("data_ingestion.missing")
	if !errors.Is(err, configbox.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	var keyErr *configbox.KeyError
	if !errors.As(err, &keyErr) || keyErr.Path != "data_ingestion.missing" {
		t.Fatalf("expected KeyError with path, got %v", err)
	}
	if _, err := box.Int("artifacts_root"); !errors.Is(err, configbox.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := box.Bool("nested.9"); !errors.Is(err, configbox.ErrKeyNotFound) {
		t.Fatalf("expected out-of-range index to be missing, got %v", err)
	}
	if box.Has("nested.x") {
		t.Fatal("non-numeric index into a sequence should not resolve")
	}
}

func TestBoxMapIsACopy(t *testing.T) {
	box := mustParse(t, sampleDocument)
	copied := box.Map()
	copied["artifacts_root"] = "changed"
	if got, _ := box.String("artifacts_root"); got != "artifacts" {
		t.Fatalf("mutating Map() result changed the box: %q", got)
	}
}

func TestBoxDecodeKeepsDefaults(t *testing.T) {
	type ingestion struct {
		RootDir   string        `yaml:"root_dir"`
		SourceURL string        `yaml:"source_url"`
		Retries   int           `yaml:"retries"`
		Timeout   time.Duration `yaml:"timeout"`
		Unset     string        `yaml:"unset"`
	}
	type document struct {
		ArtifactsRoot string    `yaml:"artifacts_root"`
		DataIngestion ingestion `yaml:"data_ingestion"`
	}

	box := mustParse(t, sampleDocument)
	out := document{DataIngestion: ingestion{Unset: "default"}}
	if err := box.Decode(&out); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if out.ArtifactsRoot != "artifacts" || out.DataIngestion.Retries != 3 {
		t.Fatalf("unexpected decode result %+v", out)
	}
	if out.DataIngestion.Timeout != 45*time.Second {
		t.Fatalf("timeout = %v", out.DataIngestion.Timeout)
	}
	if out.DataIngestion.Unset != "default" {
		t.Fatalf("default should survive decode, got %q", out.DataIngestion.Unset)
	}

	var names []string
	if err := box.DecodePath("data_validation.all_required_files", &names); err != nil {
		t.Fatalf("DecodePath returned error: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewNilMapping(t *testing.T) {
	box := configbox.New(nil)
	if box.Len() != 0 {
		t.Fatalf("expected empty box, got %d keys", box.Len())
	}
}
