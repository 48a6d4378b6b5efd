package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed schema.json
var schemaDocument []byte

var (
	resultSchemaOnce sync.Once
	resultSchema     *openapi3.Schema
	resultSchemaErr  error
)

// ResultSchema returns the OpenAPI 3 schema every oracle answer must satisfy.
func ResultSchema() (*openapi3.Schema, error) {
	resultSchemaOnce.Do(func() {
		schema := &openapi3.Schema{}
		if err := json.Unmarshal(schemaDocument, schema); err != nil {
			resultSchemaErr = fmt.Errorf("extraction: decode result schema: %w", err)
			return
		}
		resultSchema = schema
	})
	return resultSchema, resultSchemaErr
}

// SchemaError reports an oracle answer that is not valid JSON or does not
// match the result schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("extraction: result violates schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Result is a decoded oracle answer. Rows keep their original keys so
// alternate spellings can be mapped afterwards.
type Result struct {
	Rows     []map[string]any
	Draft    string
	Warnings []string
}

type wireResult struct {
	Propostas []map[string]any `json:"propostas"`
	Draft     *string          `json:"objeto_rascunho"`
	Avisos    []string         `json:"avisos"`
}

// DecodeResult validates raw against ResultSchema and decodes it. Markdown
// code fences around the JSON are tolerated.
func DecodeResult(raw []byte) (Result, error) {
	schema, err := ResultSchema()
	if err != nil {
		return Result{}, err
	}

	body := stripFence(raw)
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return Result{}, &SchemaError{Err: err}
	}
	if err := schema.VisitJSON(value); err != nil {
		return Result{}, &SchemaError{Err: err}
	}

	var wire wireResult
	if err := json.Unmarshal(body, &wire); err != nil {
		return Result{}, &SchemaError{Err: err}
	}

	result := Result{Rows: wire.Propostas}
	if wire.Draft != nil {
		result.Draft = strings.TrimSpace(*wire.Draft)
	}
	for _, warning := range wire.Avisos {
		if trimmed := strings.TrimSpace(warning); trimmed != "" {
			result.Warnings = append(result.Warnings, trimmed)
		}
	}
	return result, nil
}

func stripFence(raw []byte) []byte {
	body := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}
