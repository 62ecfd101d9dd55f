// Package schemas checks resume documents and model responses against the
// embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFS embed.FS

// Name identifies an embedded schema.
type Name string

// Embedded schemas.
const (
	Resume   Name = "resume"
	Analysis Name = "analysis"
	Match    Name = "match"
)

func (n Name) file() string {
	return string(n) + ".schema.json"
}

// rootField labels errors that are not tied to a property.
const rootField = "(root)"

// FieldError is one violation at a dotted property path such as "experience.0.isCurrent".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SchemaLoadError means an embedded schema is missing or does not compile.
type SchemaLoadError struct {
	Name  Name
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error { return e.Cause }

type compiled struct {
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

var (
	cacheMu sync.Mutex
	cache   = map[Name]*compiled{}
)

// schema compiles name on first use. Concurrent first callers wait for one compilation.
func schema(name Name) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	c, ok := cache[name]
	if !ok {
		c = &compiled{}
		cache[name] = c
	}
	cacheMu.Unlock()

	c.once.Do(func() {
		raw, err := schemaFS.ReadFile(name.file())
		if err != nil {
			c.err = &SchemaLoadError{Name: name, Cause: err}
			return
		}
		c.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			c.err = &SchemaLoadError{Name: name, Cause: err}
		}
	})
	return c.schema, c.err
}

// Validate checks JSON bytes against an embedded schema. Malformed JSON is
// reported as a ValidationError on the root.
func Validate(name Name, data []byte) error {
	s, err := schema(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: rootField, Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = rootField
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
