// Package preflight provides readiness checks for the filesystem paths and
// dataset source the pipeline depends on.
//
// `summarizer run` calls RunAll before starting any stage; a failed check
// stops the run before ingestion touches the artifacts tree. Individual
// checks are exported so other commands can report them on their own.
package preflight
