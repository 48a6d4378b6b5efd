package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-quotefill/pkg/docxtpl"
)

// Transformer mutates the rendering context after it is built and before the
// template renders. Implementations can add institution-specific values or
// rewrite generated ones.
type Transformer interface {
	Transform(ctx context.Context, data docxtpl.Context) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, data docxtpl.Context) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, data docxtpl.Context) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, data)
}

// JSONPresetTransformer applies declarative values loaded from a JSON file.
// Defaults fill keys the pipeline left empty; overrides always win. Dotted
// keys address nested mappings:
//
//	{
//	  "defaults": {"instituicao": "Fundação de Apoio"},
//	  "overrides": {"rodape.cidade": "Belo Horizonte"}
//	}
type JSONPresetTransformer struct {
	document jsonPresetDocument
}

type jsonPresetDocument struct {
	Defaults  map[string]any `json:"defaults"`
	Overrides map[string]any `json:"overrides"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonPresetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the preset onto data.
func (t *JSONPresetTransformer) Transform(ctx context.Context, data docxtpl.Context) error {
	if data == nil {
		return errors.New("json preset transformer: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, path := range sortedKeys(t.document.Defaults) {
		if current, ok := lookupPath(data, path); ok && !isBlank(current) {
			continue
		}
		if err := setPath(data, path, t.document.Defaults[path]); err != nil {
			return err
		}
	}
	for _, path := range sortedKeys(t.document.Overrides) {
		if err := setPath(data, path, t.document.Overrides[path]); err != nil {
			return err
		}
	}
	return nil
}

// sortedKeys orders preset paths so a parent key is applied before the dotted
// keys nested under it.
func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func lookupPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, segment := range strings.Split(path, ".") {
		m, ok := toMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(data map[string]any, path string, value any) error {
	segments := strings.Split(strings.TrimSpace(path), ".")
	if len(segments) == 0 || segments[0] == "" {
		return errors.New("json preset transformer: key is required")
	}
	current := data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := toMap(current[segment])
		if !ok {
			if _, exists := current[segment]; exists && current[segment] != nil {
				return fmt.Errorf("json preset transformer: %q is not a mapping", path)
			}
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = cloneValue(value)
	return nil
}

// cloneValue copies preset mappings so nested writes never reach back into
// the decoded document shared by every run.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, value := range t {
			out[key] = cloneValue(value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, value := range t {
			out[i] = cloneValue(value)
		}
		return out
	default:
		return v
	}
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case docxtpl.Context:
		return m, true
	default:
		return nil, false
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
