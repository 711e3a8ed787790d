// Package main hosts the summarizer CLI entrypoint and command graph.
//
// `summarizer run` builds the ingestion, validation and transformation stages
// and executes them in order, recording each run in the local history
// database. The remaining commands inspect that history, list stages, and
// expose the directory and size helpers used by the pipeline.
package main
