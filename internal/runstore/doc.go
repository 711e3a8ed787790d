// Package runstore persists pipeline run history in SQLite.
//
// Each `summarizer run` invocation becomes one row in runs, and every stage it
// starts becomes one row in stage_runs. The Store satisfies the stageexec
// Recorder interface so the orchestrator records stage transitions as they
// happen; the CLI opens and closes the run around it.
//
// Schema changes bump schemaVersion in schema.go. The history is diagnostic
// only, so users delete the database to adopt a new schema.
package runstore
