package configbox

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyConfig reports a YAML source that parsed to nothing.
	ErrEmptyConfig = errors.New("yaml file is empty")
	// ErrNotMapping reports a YAML document whose top level is not a mapping.
	ErrNotMapping = errors.New("yaml document is not a mapping")
	// ErrKeyNotFound reports a lookup path that does not resolve.
	ErrKeyNotFound = errors.New("key not found")
	// ErrTypeMismatch reports a value that cannot be converted to the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// KeyError describes a failed lookup.
type KeyError struct {
	Path string
	Want string
	Err  error
}

func (e *KeyError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("%s: %v (want %s)", e.Path, e.Err, e.Want)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }
