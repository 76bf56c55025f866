package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	schemaPage   = "page"
	schemaObject = "object"
)

// envelopeSchemas describe the two response shapes: a paginated list and a
// single object.
var envelopeSchemas = map[string]map[string]any{
	schemaPage: {
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"statusCode": map[string]any{"type": "integer"},
			"message":    map[string]any{"type": []any{"string", "null"}},
			"data": map[string]any{
				"type":     "object",
				"required": []any{"result"},
				"properties": map[string]any{
					"meta": map[string]any{"type": "object"},
					"result": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "object"},
					},
				},
			},
		},
	},
	schemaObject: {
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"statusCode": map[string]any{"type": "integer"},
			"message":    map[string]any{"type": []any{"string", "null"}},
			"data":       map[string]any{"type": "object"},
		},
	},
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateEnvelope checks raw against the named envelope schema. Failures
// wrap ErrInvalidPayload.
func validateEnvelope(name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidPayload, err)
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := envelopeSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, any(def)); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
