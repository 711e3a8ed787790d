package testsupport

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// Dialogue is one dataset record as it appears in the split JSONL files.
type Dialogue struct {
	ID       string `json:"id"`
	Dialogue string `json:"dialogue"`
	Summary  string `json:"summary"`
}

// WriteJSONL writes one JSON object per line to path.
func WriteJSONL(t testing.TB, path string, records []Dialogue) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			t.Fatalf("encode record: %v", err)
		}
	}
}

// WriteZip builds a zip archive at path whose entries are the map keys.
// Keys ending in "/" become directory entries.
func WriteZip(t testing.TB, path string, entries map[string]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
}

// SampleDataset returns a small zip payload laid out like the real dataset
// archive: one JSONL file per split under samsum_dataset/.
func SampleDataset() map[string]string {
	line := func(id, dialogue, summary string) string {
		raw, _ := json.Marshal(Dialogue{ID: id, Dialogue: dialogue, Summary: summary})
		return string(raw) + "\n"
	}
	return map[string]string{
		"samsum_dataset/":                 "",
		"samsum_dataset/train.jsonl":      line("t1", "Amanda: I baked cookies.\nJerry: Sure!", "Amanda baked cookies.") + line("t2", "Olivia: Who are you voting for?", "Olivia asks about the vote."),
		"samsum_dataset/test.jsonl":       line("s1", "Tim: Hi!\nKim: Hello.", "Tim and Kim greet."),
		"samsum_dataset/validation.jsonl": line("v1", "Ann: Lunch?\nBen: Yes.", "Ann and Ben will have lunch."),
	}
}
