// Package validation checks normalized resumes against the persisted record
// schema before they are stored.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

//go:embed parsed_resume.schema.json
var parsedResumeSchema []byte

const schemaURL = "parsed_resume.schema.json"

type Validator struct {
	schema *jsonschema.Schema
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, bytes.NewReader(parsedResumeSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate fails with domain.ErrInvalidInput when the record breaks the schema
// (a null list, a non-canonical date, an empty string standing in for null).
func (v *Validator) Validate(resume domain.ParsedResume) error {
	raw, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("marshal resume: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal resume: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate resume", err)
	}
	return nil
}
