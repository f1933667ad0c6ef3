package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/barnslig/mediacccde-graphql/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

// Schema returns the embedded JSON Schema document.
func Schema() []byte {
	return schemaJSON
}

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a configuration document against the embedded
// schema. All violations are reported in one error.
func ValidateDocument(doc map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return errors.WrapFatal(err, "config", "ValidateDocument", "compile schema")
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"config", "ValidateDocument", "validate document")
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(problems, "; ")),
		"config", "ValidateDocument", "schema validation")
}
