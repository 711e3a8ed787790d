// Package services defines shared error and context helpers consumed by the
// pipeline stages and the stage runner.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and run identifiers.
//   - Structured error markers plus the Wrap helper that classify failures
//     so the runner can log a kind and an operator hint next to the error.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
