package testsupport

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a single captured slog record with its attributes flattened.
// Group attributes are keyed by their dotted path.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder collects log entries emitted through a CaptureLogger.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Entries returns a copy of the captured entries in emission order.
func (r *LogRecorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns just the message of each captured entry.
func (r *LogRecorder) Messages() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Message
	}
	return out
}

// Filter returns the entries whose message equals msg.
func (r *LogRecorder) Filter(msg string) []LogEntry {
	var out []LogEntry
	for _, entry := range r.Entries() {
		if entry.Message == msg {
			out = append(out, entry)
		}
	}
	return out
}

func (r *LogRecorder) add(entry LogEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

// CaptureLogger returns a debug-level logger whose records are kept in memory.
func CaptureLogger() (*slog.Logger, *LogRecorder) {
	recorder := &LogRecorder{}
	return slog.New(&captureHandler{recorder: recorder}), recorder
}

type captureHandler struct {
	recorder *LogRecorder
	attrs    []slog.Attr
	groups   []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		flatten(attrs, "", attr)
	}
	prefix := groupPrefix(h.groups)
	record.Attrs(func(attr slog.Attr) bool {
		flatten(attrs, prefix, attr)
		return true
	})
	h.recorder.add(LogEntry{Level: record.Level, Message: record.Message, Attrs: attrs})
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &captureHandler{recorder: h.recorder, groups: h.groups}
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixAttrs(groupPrefix(h.groups), attrs)...)
	return next
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &captureHandler{
		recorder: h.recorder,
		attrs:    h.attrs,
		groups:   append(append([]string(nil), h.groups...), name),
	}
}

func groupPrefix(groups []string) string {
	prefix := ""
	for _, g := range groups {
		prefix += g + "."
	}
	return prefix
}

func prefixAttrs(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = slog.Attr{Key: prefix + attr.Key, Value: attr.Value}
	}
	return out
}

func flatten(dst map[string]any, prefix string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = prefix + attr.Key + "."
		}
		for _, child := range value.Group() {
			flatten(dst, inner, child)
		}
		return
	}
	if attr.Key == "" {
		return
	}
	dst[prefix+attr.Key] = value.Any()
}
