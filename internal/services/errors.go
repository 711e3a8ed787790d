package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Error is the structured failure produced by Wrap. It unwraps to both the
// marker and the underlying cause so errors.Is works against either.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Hint      string
	Err       error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// ErrorKind returns the classification string for the marker.
func (e *Error) ErrorKind() string {
	return kindOf(e.Marker)
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// WrapWithHint is Wrap plus an operator-facing next step.
func WrapWithHint(marker error, stage, operation, message, hint string, err error) error {
	wrapped := Wrap(marker, stage, operation, message, err).(*Error)
	wrapped.Hint = strings.TrimSpace(hint)
	return wrapped
}

// Details summarizes a failure for logging.
type Details struct {
	Kind      string
	Stage     string
	Operation string
	Message   string
	Hint      string
}

// ErrorDetails extracts the structured fields of err. Errors that were not
// produced by Wrap still get a kind derived from known sentinels.
func ErrorDetails(err error) Details {
	if err == nil {
		return Details{}
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return Details{
			Kind:      svcErr.ErrorKind(),
			Stage:     svcErr.Stage,
			Operation: svcErr.Operation,
			Message:   svcErr.Message,
			Hint:      svcErr.Hint,
		}
	}
	return Details{Kind: Kind(err)}
}

// Kind returns the classification string for any error.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.ErrorKind()
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return kindOf(err)
}

func kindOf(marker error) string {
	switch {
	case errors.Is(marker, ErrValidation):
		return "validation"
	case errors.Is(marker, ErrConfiguration):
		return "configuration"
	case errors.Is(marker, ErrNotFound):
		return "not_found"
	case errors.Is(marker, ErrExternalTool):
		return "external_tool"
	case errors.Is(marker, ErrTimeout):
		return "timeout"
	case errors.Is(marker, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
