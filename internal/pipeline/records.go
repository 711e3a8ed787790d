package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is one dialogue/summary pair.
type Record struct {
	ID       string `json:"id"`
	Dialogue string `json:"dialogue"`
	Summary  string `json:"summary"`
}

type normalizer struct {
	maxInputWords  int
	maxTargetWords int
	lower          cases.Caser
	lowercase      bool
}

type normalizeResult struct {
	record          Record
	keep            bool
	truncatedInput  bool
	truncatedTarget bool
}

func newNormalizer(maxInput, maxTarget int, lowercase bool) normalizer {
	return normalizer{
		maxInputWords:  maxInput,
		maxTargetWords: maxTarget,
		lower:          cases.Lower(language.Und),
		lowercase:      lowercase,
	}
}

func (n normalizer) apply(r Record) normalizeResult {
	dialogue := normalizeText(r.Dialogue)
	summary := normalizeText(r.Summary)
	if n.lowercase {
		dialogue = n.lower.String(dialogue)
		summary = n.lower.String(summary)
	}
	dialogue, truncIn := truncateWords(dialogue, n.maxInputWords)
	summary, truncOut := truncateWords(summary, n.maxTargetWords)
	return normalizeResult{
		record:          Record{ID: strings.TrimSpace(r.ID), Dialogue: dialogue, Summary: summary},
		keep:            dialogue != "" && summary != "",
		truncatedInput:  truncIn,
		truncatedTarget: truncOut,
	}
}

// normalizeText collapses runs of whitespace inside each line and drops
// blank lines. Line breaks between dialogue turns are kept.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, "\n")
}

// truncateWords keeps the first limit words of s. The text must already be
// normalized so words are single-space separated within lines.
func truncateWords(s string, limit int) (string, bool) {
	if limit <= 0 || s == "" {
		return s, false
	}
	remaining := limit
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		words := strings.Split(line, " ")
		if len(words) < remaining {
			remaining -= len(words)
			continue
		}
		if len(words) == remaining && i == len(lines)-1 {
			return s, false
		}
		kept := append(lines[:i:i], strings.Join(words[:remaining], " "))
		return strings.Join(kept, "\n"), true
	}
	return s, false
}
