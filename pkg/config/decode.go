package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var decodeLog = logger.New("config:decode")

// Load reads, decodes, validates, and builds the workflow definition at
// path, returning every workflow it defines indexed by name.
func Load(path string) (map[string]*Built, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Build(raw)
}

// decodeAndValidate decodes yamlBytes twice: once into a plain
// map[string]any for schema validation (the shape jsonschema/v6 expects),
// and once into the typed File struct the builder consumes. goccy/go-yaml
// produces JSON-compatible map[string]any (not map[any]any), so the first
// decode needs no further conversion.
func decodeAndValidate(yamlBytes []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow definition: %w", err)
	}
	if err := validateAgainstSchema(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(yamlBytes, &f); err != nil {
		return nil, fmt.Errorf("decode workflow definition: %w", err)
	}
	decodeLog.Printf("decoded %d workflow(s)", len(f.Workflows))
	return &f, nil
}
