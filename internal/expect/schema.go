package expect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors is every schema violation found in a body.
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled JSON schema.
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON schema document.
func CompileSchema(doc []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// Validate checks body against the schema. It returns nil when the body
// conforms, ValidationErrors when it does not, and a plain error when the
// body is not JSON.
func (s *Schema) Validate(body []byte) error {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return flatten(verr)
	}
	return ValidationErrors{err}
}

// ValidateSchema compiles doc and validates body against it.
func ValidateSchema(doc, body []byte) error {
	schema, err := CompileSchema(doc)
	if err != nil {
		return err
	}
	return schema.Validate(body)
}

// flatten collects the leaf causes, which carry the specific messages.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", location, err.Message)}
	}
	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, flatten(cause)...)
	}
	return errs
}
