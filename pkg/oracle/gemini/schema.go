package gemini

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/genai"

	"github.com/goliatone/go-quotefill/pkg/extraction"
)

// ResponseSchema converts the extraction result schema into the structured
// output schema Gemini expects.
func ResponseSchema() (*genai.Schema, error) {
	schema, err := extraction.ResultSchema()
	if err != nil {
		return nil, fmt.Errorf("gemini: load result schema: %w", err)
	}
	return convertSchema(schema), nil
}

func convertSchema(src *openapi3.Schema) *genai.Schema {
	if src == nil {
		return nil
	}
	out := &genai.Schema{
		Description: src.Description,
	}
	if src.Nullable {
		nullable := true
		out.Nullable = &nullable
	}

	switch firstType(src.Type) {
	case openapi3.TypeObject:
		out.Type = genai.TypeObject
	case openapi3.TypeArray:
		out.Type = genai.TypeArray
	case openapi3.TypeString:
		out.Type = genai.TypeString
	case openapi3.TypeNumber:
		out.Type = genai.TypeNumber
	case openapi3.TypeInteger:
		out.Type = genai.TypeInteger
	case openapi3.TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		// Structured output needs a concrete type; untyped values travel as
		// text and are parsed afterwards.
		out.Type = genai.TypeString
	}

	if len(src.Properties) > 0 {
		names := make([]string, 0, len(src.Properties))
		for name := range src.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		out.Properties = make(map[string]*genai.Schema, len(names))
		for _, name := range names {
			if ref := src.Properties[name]; ref != nil {
				out.Properties[name] = convertSchema(ref.Value)
			}
		}
		out.PropertyOrdering = names
	}
	if src.Items != nil {
		out.Items = convertSchema(src.Items.Value)
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
