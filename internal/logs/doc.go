// Package logs reads pipeline run logs: the last N lines of a file, and a
// polling follow mode that streams lines appended after a known offset.
package logs
