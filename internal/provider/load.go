package provider

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/providers.yaml
var defaultProvidersYAML []byte

// Parse decodes and validates a YAML provider document
func Parse(data []byte) (Tables, error) {
	var tables Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tables); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, fmt.Errorf("parsing providers YAML: %w", err)
	}
	if err := tables.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid providers: %w", err)
	}
	return tables, nil
}

// LoadFile reads provider tables from a YAML file
func LoadFile(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading providers file: %w", err)
	}
	tables, err := Parse(data)
	if err != nil {
		return Tables{}, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// Default returns the embedded provider tables
func Default() Tables {
	tables, err := Parse(defaultProvidersYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded providers are invalid: %v", err))
	}
	return tables
}
