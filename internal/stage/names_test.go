package stage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func noop() Handler {
	return HandlerFunc(func(context.Context) error { return nil })
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"data_ingestion":      "Data Ingestion",
		"data-transformation": "Data Transformation",
		"validation":          "Validation",
		"  ":                  "",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Fatalf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateNames(t *testing.T) {
	if err := ValidateNames(nil); !errors.Is(err, ErrNoStages) {
		t.Fatalf("expected ErrNoStages, got %v", err)
	}
	if err := ValidateNames([]Named{{Name: "a", Handler: noop()}, {Name: "b", Handler: noop()}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		stages []Named
		want   string
	}{
		{"blank", []Named{{Name: " ", Handler: noop()}}, "name is required"},
		{"nil handler", []Named{{Name: "a"}}, "handler unavailable"},
		{"duplicate", []Named{{Name: "a", Handler: noop()}, {Name: "a", Handler: noop()}}, "listed twice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNames(tc.stages)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestHealthSummary(t *testing.T) {
	tests := []struct {
		health Health
		want   string
	}{
		{Healthy("data_ingestion"), "ready"},
		{Unhealthy("data_ingestion", ""), "not ready"},
		{Unhealthy("data_ingestion", "no source_url configured"), "not ready: no source_url configured"},
	}
	for _, tc := range tests {
		if got := tc.health.Summary(); got != tc.want {
			t.Fatalf("Summary() = %q, want %q", got, tc.want)
		}
	}
}
