// Package validation checks JSON request bodies against embedded schemas.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	TaskCreate  = "task_create.json"
	TaskPatch   = "task_patch.json"
	Credentials = "credentials.json"

	schemaBaseURL = "https://taskapp.local/schemas/"
)

// Error is the first failing rule in a body.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	names := []string{TaskCreate, TaskPatch, Credentials}
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// MustNew panics if the embedded schemas do not compile.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks body against the named schema.
func (v *Validator) Validate(name string, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &Error{Message: "Bad JSON"}
	}
	if err := schema.Validate(doc); err != nil {
		return firstError(err)
	}
	return nil
}

func firstError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Message: err.Error()}
	}
	var result *Error
	collect(ve, &result)
	if result == nil {
		return &Error{Message: ve.Message}
	}
	return result
}

// collect finds the first leaf cause.
func collect(ve *jsonschema.ValidationError, result **Error) {
	if len(ve.Causes) == 0 {
		*result = &Error{Path: pointerToPath(ve.InstanceLocation), Message: ve.Message}
		return
	}
	for _, cause := range ve.Causes {
		if *result == nil {
			collect(cause, result)
		}
	}
}

func pointerToPath(ptr string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}
