package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var configLog = logger.New("config:schema")

//go:embed schemas/workflow_schema.json
var workflowSchemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

const workflowSchemaURL = "https://sourcebridge.example/schemas/workflow.json"

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		configLog.Print("compiling embedded workflow schema")
		compiler := jsonschema.NewCompiler()
		var doc any
		if err := json.Unmarshal([]byte(workflowSchemaJSON), &doc); err != nil {
			schemaErr = fmt.Errorf("parse embedded workflow schema: %w", err)
			return
		}
		if err := compiler.AddResource(workflowSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add workflow schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(workflowSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validateAgainstSchema validates a decoded YAML document (as
// map[string]any / []any / scalar values — the shape jsonschema/v6
// expects) against the embedded workflow schema.
func validateAgainstSchema(doc any) error {
	schema, err := getCompiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("workflow definition failed schema validation: %w", err)
	}
	return nil
}
