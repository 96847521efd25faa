// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config files and persisted setting values both go through here, so the
// underlying YAML library can be swapped without touching callers.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData          = errors.New("yamlutil: nil or empty data")
	ErrNilDestination   = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge    = errors.New("yamlutil: input exceeds maximum size")
	ErrUnsupportedValue = errors.New("yamlutil: unsupported scalar type")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// EncodeScalar renders a bool or string as a single YAML scalar.
// Strings that would read back as another type ("true", "1") are quoted,
// so a decoded value keeps the type it was stored with.
func EncodeScalar(v any) (string, error) {
	switch v.(type) {
	case bool, string:
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("yamlutil: %w", err)
	}
	return string(bytes.TrimSpace(out)), nil
}

// DecodeScalar parses a value written by EncodeScalar. Anything that is
// not a bool comes back as a string. Plain scalars YAML reads as numbers or
// null (".inf", "0x1F", "~") come back as the text that was stored.
func DecodeScalar(s string) (any, error) {
	if s == "" {
		return "", nil
	}
	var v any
	if err := Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case bool, string:
		return t, nil
	default:
		return s, nil
	}
}
