package docxtpl

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Context maps placeholder paths to values. Loop keys map to sequences of
// row mappings.
type Context map[string]any

// NewContext converts data into a Context. Maps are copied; structs and other
// values are converted through their JSON representation so json tags become
// placeholder names.
func NewContext(data any) (Context, error) {
	switch v := data.(type) {
	case nil:
		return Context{}, nil
	case Context:
		return copyContext(v), nil
	case map[string]any:
		return copyContext(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("docxtpl: encode context: %w", err)
		}
		out := Context{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("docxtpl: decode context: %w", err)
		}
		return out, nil
	}
}

func copyContext(in map[string]any) Context {
	out := make(Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// scope is the chain of mappings visible while rendering; the innermost row
// is last and wins on name collisions.
type scope []map[string]any

func (s scope) push(row map[string]any) scope {
	next := make(scope, len(s), len(s)+1)
	copy(next, s)
	return append(next, row)
}

func (s scope) lookup(path string) (any, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if value, ok := s[i][path]; ok {
			return value, true
		}
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	segments := strings.Split(path, ".")
	for i := len(s) - 1; i >= 0; i-- {
		root, ok := s[i][segments[0]]
		if !ok {
			continue
		}
		return walk(root, segments[1:])
	}
	return nil, false
}

func walk(value any, segments []string) (any, bool) {
	current := value
	for _, segment := range segments {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		next, ok := m[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Context:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// rows returns the loop rows held by value. Anything that is not a non-empty
// sequence yields no rows.
func rows(value any) []map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case []map[string]any:
		return v
	case []Context:
		out := make([]map[string]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]map[string]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		row, ok := asMap(rv.Index(i).Interface())
		if !ok {
			row = map[string]any{}
		}
		out = append(out, row)
	}
	return out
}
