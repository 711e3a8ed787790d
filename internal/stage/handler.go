// Package stage defines the contract every pipeline stage implements.
package stage

import (
	"context"
	"log/slog"
)

// Handler is a unit of pipeline work with a single entry operation.
type Handler interface {
	Execute(context.Context) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(context.Context) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// LoggerAware handlers receive the stage-scoped logger before Execute runs.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// HealthChecker handlers can report readiness without executing.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}

// Named pairs a handler with the stage name used in logs and run history.
type Named struct {
	Name    string
	Handler Handler
}
