package configstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads Values from a YAML file and validates them.
func LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		return Values{}, fmt.Errorf("read config %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return Values{}, fmt.Errorf("config %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes and validates YAML Values. An empty document yields the
// defaults. Unknown fields are rejected so a misspelled key cannot silently
// fall back to its default.
func Parse(data []byte) (Values, error) {
	var v Values
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return Values{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := v.Validate(); err != nil {
		return Values{}, fmt.Errorf("invalid values: %w", err)
	}
	return v, nil
}
