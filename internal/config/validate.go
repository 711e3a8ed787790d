package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return describeFieldError(fieldErrs[0])
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if err := c.validateSourceURL(); err != nil {
		return err
	}
	if !doublestar.ValidatePattern(c.DataTransformation.SplitPattern) {
		return fmt.Errorf("data_transformation.split_pattern: invalid glob %q", c.DataTransformation.SplitPattern)
	}
	return nil
}

func (c *Config) validateSourceURL() error {
	raw := c.DataIngestion.SourceURL
	if raw == "" || !strings.Contains(raw, "://") {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("data_ingestion.source_url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "file":
		return nil
	default:
		return fmt.Errorf("data_ingestion.source_url: unsupported scheme %q", parsed.Scheme)
	}
}

// describeFieldError renders a validator failure using the YAML key path.
func describeFieldError(fe validator.FieldError) error {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must be set", path)
	case "gt":
		return fmt.Errorf("%s must be greater than %s", path, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be at least %s", path, fe.Param())
	case "min":
		return fmt.Errorf("%s must list at least %s entry", path, fe.Param())
	case "http_url":
		return fmt.Errorf("%s must be an http(s) URL", path)
	case "oneof":
		return fmt.Errorf("%s: unsupported value %q (use one of: %s)", path, fmt.Sprint(fe.Value()), fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", path, fe.Tag())
	}
}
