// Package pipeline implements the dataset preparation stages of the
// summarizer: ingestion, validation, and transformation.
//
// Stages share nothing in memory. Each reads its inputs from the artifacts
// tree written by the previous stage, so any stage can be rerun on its own
// with `summarizer run --stage <name>`. Failures are tagged with the
// services error markers so the orchestrator can log a kind and hint.
package pipeline
