package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	candidateSchemaOnce sync.Once
	candidateSchema     *jsonschema.Schema
	candidateSchemaErr  error
)

// compileCandidateSchema compiles the candidate-object schema once.
func compileCandidateSchema() (*jsonschema.Schema, error) {
	candidateSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildCandidateJSONSchema())
		if err != nil {
			candidateSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
			candidateSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		candidateSchema, candidateSchemaErr = compiler.Compile("candidate.json")
	})
	return candidateSchema, candidateSchemaErr
}

// validCandidateObject reports whether one decoded object conforms to the
// candidate schema. A schema compile failure fails open: malformed model
// output must degrade, never error.
func validCandidateObject(obj map[string]any) bool {
	schema, err := compileCandidateSchema()
	if err != nil {
		return true
	}
	// Round-trip through generic JSON types for the validator.
	return schema.Validate(map[string]any(obj)) == nil
}
