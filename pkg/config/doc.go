// Package config loads a workflow definition file — the declarative input
// to the migration engine (spec.md §4.1 "a workflow definition") — from
// YAML via github.com/goccy/go-yaml, validates it against an embedded JSON
// Schema with github.com/santhosh-tekuri/jsonschema/v6, and builds the
// runner.WorkflowConfig plus the pipeline.Transformation tree it describes.
//
// The embedded declarative configuration language interpreter that
// produces arbitrary transformation graphs from markdown (spec.md §1) is
// out of scope; config files here are plain YAML naming the engine's
// built-in transformation kinds, not an executable DSL.
package config
