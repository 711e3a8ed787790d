package configbox

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Box is a read-only view over a parsed YAML mapping.
type Box struct {
	data map[string]any
}

// New wraps an existing mapping. The mapping is normalized and copied.
func New(data map[string]any) *Box {
	if data == nil {
		return &Box{data: map[string]any{}}
	}
	return &Box{data: normalize(data).(map[string]any)}
}

// Get resolves a dotted path. Numeric segments index into sequences.
func (b *Box) Get(path string) (any, bool) {
	if b == nil {
		return nil, false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return b.data, true
	}
	var current any = b.data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Has reports whether path resolves, including to an explicit null.
func (b *Box) Has(path string) bool {
	_, ok := b.Get(path)
	return ok
}

// Keys returns the top-level keys in sorted order.
func (b *Box) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level keys.
func (b *Box) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Map returns a deep copy of the underlying mapping.
func (b *Box) Map() map[string]any {
	if b == nil {
		return map[string]any{}
	}
	return normalize(b.data).(map[string]any)
}

// Sub returns the mapping at path as its own Box.
func (b *Box) Sub(path string) (*Box, error) {
	value, err := b.lookup(path)
	if err != nil {
		return nil, err
	}
	mapping, ok := value.(map[string]any)
	if !ok {
		return nil, mismatch(path, "mapping", value)
	}
	return &Box{data: mapping}, nil
}

// String returns the scalar at path rendered as a string.
func (b *Box) String(path string) (string, error) {
	value, err := b.lookup(path)
	if err != nil {
		return "", err
	}
	switch typed := value.(type) {
	case string:
		return typed, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(typed), nil
	case time.Time:
		return typed.Format(time.RFC3339), nil
	default:
		return "", mismatch(path, "string", value)
	}
}

// StringOr returns the string at path or fallback when the key is missing.
func (b *Box) StringOr(path, fallback string) string {
	value, err := b.String(path)
	if err != nil {
		return fallback
	}
	return value
}

// Int returns the integer at path. Floats with no fractional part are accepted.
func (b *Box) Int(path string) (int, error) {
	value, err := b.lookup(path)
	if err != nil {
		return 0, err
	}
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case uint64:
		if typed > math.MaxInt {
			return 0, mismatch(path, "int", value)
		}
		return int(typed), nil
	case float64:
		if typed != math.Trunc(typed) {
			return 0, mismatch(path, "int", value)
		}
		return int(typed), nil
	default:
		return 0, mismatch(path, "int", value)
	}
}

// Float returns the number at path.
func (b *Box) Float(path string) (float64, error) {
	value, err := b.lookup(path)
	if err != nil {
		return 0, err
	}
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	default:
		return 0, mismatch(path, "float", value)
	}
}

// Bool returns the boolean at path.
func (b *Box) Bool(path string) (bool, error) {
	value, err := b.lookup(path)
	if err != nil {
		return false, err
	}
	typed, ok := value.(bool)
	if !ok {
		return false, mismatch(path, "bool", value)
	}
	return typed, nil
}

// Strings returns the sequence at path as strings. A single scalar is
// returned as a one-element slice.
func (b *Box) Strings(path string) ([]string, error) {
	value, err := b.lookup(path)
	if err != nil {
		return nil, err
	}
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for i, item := range typed {
			switch item.(type) {
			case map[string]any, []any, nil:
				return nil, mismatch(fmt.Sprintf("%s.%d", path, i), "string", item)
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	case string:
		return []string{typed}, nil
	default:
		return nil, mismatch(path, "sequence", value)
	}
}

// Duration parses a Go duration string ("30s") or a number of seconds.
func (b *Box) Duration(path string) (time.Duration, error) {
	value, err := b.lookup(path)
	if err != nil {
		return 0, err
	}
	switch typed := value.(type) {
	case string:
		d, parseErr := time.ParseDuration(strings.TrimSpace(typed))
		if parseErr != nil {
			return 0, mismatch(path, "duration", value)
		}
		return d, nil
	case int:
		return time.Duration(typed) * time.Second, nil
	case float64:
		return time.Duration(typed * float64(time.Second)), nil
	default:
		return 0, mismatch(path, "duration", value)
	}
}

// Decode copies the mapping into out (a pointer to a struct or map) using
// yaml struct tags. Fields already set on out are kept unless the document
// overrides them, so defaults can be applied before decoding.
func (b *Box) Decode(out any) error {
	return b.decode(b.Map(), out)
}

// DecodePath decodes the value at path into out.
func (b *Box) DecodePath(path string, out any) error {
	value, err := b.lookup(path)
	if err != nil {
		return err
	}
	return b.decode(value, out)
}

func (b *Box) decode(input, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("configure decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (b *Box) lookup(path string) (any, error) {
	value, ok := b.Get(path)
	if !ok {
		return nil, &KeyError{Path: path, Err: ErrKeyNotFound}
	}
	return value, nil
}

func mismatch(path, want string, got any) error {
	return &KeyError{Path: path, Want: want, Err: fmt.Errorf("%w: got %T", ErrTypeMismatch, got)}
}
