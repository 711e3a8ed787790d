// Package configbox reads YAML documents into Box, a read-only view that
// supports dotted key lookups ("data_ingestion.root_dir"), typed accessors,
// and decoding into typed structs.
//
// ReadYAML reports an empty or null document as ErrEmptyConfig so callers can
// tell "nothing to load" apart from parse and I/O failures, which are returned
// unchanged.
package configbox
