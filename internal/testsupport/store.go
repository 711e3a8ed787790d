package testsupport

import (
	"context"
	"testing"
	"time"

	"textsummarizer/internal/config"
	"textsummarizer/internal/runstore"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun begins a run with the given id and planned stages.
func NewRun(t testing.TB, store *runstore.Store, id string, started time.Time, stages ...string) *runstore.Run {
	t.Helper()

	run := &runstore.Run{ID: id, Stages: stages, StartedAt: started}
	if err := store.Begin(context.Background(), run); err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return run
}
