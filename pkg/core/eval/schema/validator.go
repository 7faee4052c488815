// Package schema validates provider output against a JSON Schema document,
// wrapping github.com/xeipuuv/gojsonschema the same way the reference tool
// wraps it for HTTP response bodies.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
)

// Result is the outcome of validating one document against one schema.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks instance against schema. gojsonschema implements draft-7
// semantics; callers are expected to restrict schemas to the keyword subset
// that draft-7 and draft-2020-12 agree on (type, properties, required,
// additionalProperties, items, enum, anyOf).
func Validate(schemaDoc, instance jsonvalue.Value) (Result, error) {
	schemaLoader := gojsonschema.NewBytesLoader(jsonvalue.MustMarshal(schemaDoc))
	documentLoader := gojsonschema.NewBytesLoader(jsonvalue.MustMarshal(instance))

	validated, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Result{}, fmt.Errorf("schema: validation error: %w", err)
	}

	if validated.Valid() {
		return Result{Valid: true}, nil
	}

	errs := make([]string, 0, len(validated.Errors()))
	for _, e := range validated.Errors() {
		errs = append(errs, formatError(e))
	}
	return Result{Valid: false, Errors: errs}, nil
}

// formatError renders one validation error as "<instance-path-or-(root)> <message>".
func formatError(e gojsonschema.ResultError) string {
	path := e.Field()
	if path == "" || path == "(root)" {
		path = "(root)"
	}
	return fmt.Sprintf("%s %s", path, e.Description())
}
