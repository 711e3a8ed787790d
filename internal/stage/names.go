package stage

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNoStages is returned when a pipeline is asked to run nothing.
var ErrNoStages = errors.New("no stages to run")

var titleCaser = cases.Title(language.English)

// Title renders a stage name for humans: "data_ingestion" -> "Data Ingestion".
func Title(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	if len(words) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(words, " "))
}

// ValidateNames checks that stages is non-empty and every stage has a unique,
// non-blank name and a handler.
func ValidateNames(stages []Named) error {
	if len(stages) == 0 {
		return ErrNoStages
	}
	seen := make(map[string]int, len(stages))
	for i, s := range stages {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("stage %d: name is required", i+1)
		}
		if s.Handler == nil {
			return fmt.Errorf("stage %q: handler unavailable", name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("stage %q listed twice (positions %d and %d)", name, prev+1, i+1)
		}
		seen[name] = i
	}
	return nil
}
