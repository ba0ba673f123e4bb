package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/pipeline-schema.json
var embeddedSchema []byte

const schemaURL = "https://filter-data.dev/schemas/pipeline/v1.0.0/pipeline-schema.json"

// GetEmbeddedSchema returns the embedded pipeline schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// pipelineSchema compiles the embedded schema on first use.
var pipelineSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(embeddedSchema))
	if err != nil {
		return nil, fmt.Errorf("parsing embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return schema, nil
})

// ValidateConfig validates a parsed pipeline document against the schema.
func ValidateConfig(data map[string]interface{}) *ValidationResult {
	if len(data) == 0 {
		return invalid(ValidationError{Path: "/", Type: "required", Message: "pipeline document is empty"})
	}

	schema, err := pipelineSchema()
	if err != nil {
		return invalid(ValidationError{Path: "/", Type: "schema", Message: err.Error()})
	}

	err = schema.Validate(data)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return invalid(ValidationError{Path: "/", Type: "validation", Message: err.Error()})
	}
	result := &ValidationResult{}
	collectLeafErrors(verr, &result.Errors)
	if len(result.Errors) == 0 {
		result.Errors = append(result.Errors, ValidationError{Path: "/", Type: "validation", Message: verr.Error()})
	}
	return result
}

func invalid(e ValidationError) *ValidationResult {
	return &ValidationResult{Errors: []ValidationError{e}}
}

// collectLeafErrors flattens the error tree. Only leaves name a concrete
// violation; inner nodes just say that a subschema failed.
func collectLeafErrors(err *jsonschema.ValidationError, out *[]ValidationError) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			collectLeafErrors(cause, out)
		}
		return
	}
	if err.ErrorKind == nil {
		return
	}
	*out = append(*out, ValidationError{
		Path:    instancePath(err.InstanceLocation),
		Type:    keyword(err.ErrorKind),
		Message: err.Error(),
	})
}

// instancePath renders an instance location as a JSON pointer.
func instancePath(loc []string) string {
	return "/" + strings.Join(loc, "/")
}

// keyword returns the schema keyword that failed, such as "minimum" or "required".
func keyword(kind jsonschema.ErrorKind) string {
	path := kind.KeywordPath()
	if len(path) == 0 {
		return "validation"
	}
	return path[len(path)-1]
}
