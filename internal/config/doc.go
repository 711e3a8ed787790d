// Package config loads, normalizes, and validates the pipeline configuration.
//
// The project is described by two YAML files: config.yaml (artifact layout and
// per-stage settings) and params.yaml (tunable transformation parameters).
// Both are read through configbox so an empty file surfaces as
// configbox.ErrEmptyConfig. Load applies repository defaults first, expands
// user paths (including tilde shortcuts) to absolute form, and validates the
// result so stages receive sanitized values.
package config
