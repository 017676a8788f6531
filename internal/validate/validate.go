// Package validate checks JSON documents against JSON schemas.
package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema names a JSON schema definition. Compiled schemas are cached by
// Name, so names must be unique per definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Error reports a document that failed validation.
type Error struct {
	Schema string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s document: %v", e.Schema, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Document validates raw JSON against schema. Returns *Error on failure.
func Document(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &Error{Schema: schema.Name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	s, err := compiled(schema)
	if err != nil {
		return &Error{Schema: schema.Name, Err: fmt.Errorf("compile schema: %w", err)}
	}

	if err := s.Validate(parsed); err != nil {
		return &Error{Schema: schema.Name, Err: err}
	}
	return nil
}

func compiled(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, so normalize Go literals
	// (ints, typed slices) through a marshal round trip.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, s)
	return s, nil
}
