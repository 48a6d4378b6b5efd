package docxtpl

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Option configures a render call.
type Option func(*renderConfig)

type renderConfig struct {
	strict  bool
	missing func(path string)
}

// WithStrict makes Render fail with a *SyntaxError instead of recovering from
// unbalanced loops or malformed placeholders.
func WithStrict() Option {
	return func(cfg *renderConfig) {
		cfg.strict = true
	}
}

// WithMissingHook registers a callback invoked for every scalar path that
// resolves to nothing. The rendered output is unchanged.
func WithMissingHook(fn func(path string)) Option {
	return func(cfg *renderConfig) {
		cfg.missing = fn
	}
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the characters that would break WordprocessingML text.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

// Render expands loops and substitutes scalars of normalized markup against
// ctx. Placeholders that resolve to nothing are removed from the output.
func Render(markup string, ctx Context, options ...Option) (string, error) {
	cfg := renderConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	tree, err := Parse(markup)
	if err != nil && cfg.strict {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(markup))
	tree.execute(&b, scope{map[string]any(ctx)}, cfg)
	return b.String(), nil
}

// Execute renders an already parsed tree.
func (t *Tree) Execute(ctx Context, options ...Option) string {
	cfg := renderConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	var b strings.Builder
	t.execute(&b, scope{map[string]any(ctx)}, cfg)
	return b.String()
}

func (t *Tree) execute(b *strings.Builder, sc scope, cfg renderConfig) {
	if t == nil {
		return
	}
	renderNodes(b, t.Nodes, sc, cfg)
}

func renderNodes(b *strings.Builder, nodes []Node, sc scope, cfg renderConfig) {
	for _, n := range nodes {
		switch node := n.(type) {
		case TextNode:
			b.WriteString(node.Text)
		case ScalarNode:
			value, ok := sc.lookup(node.Path)
			text := stringify(value)
			if (!ok || value == nil) && cfg.missing != nil {
				cfg.missing(node.Path)
			}
			b.WriteString(text)
		case LoopNode:
			value, _ := sc.lookup(node.Key)
			for _, row := range rows(value) {
				renderNodes(b, node.Body, sc.push(row), cfg)
			}
		}
	}
}

// stringify renders a scalar value. Sequences and mappings have no scalar
// form and render empty.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return Escape(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return Escape(v.String())
	default:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return ""
		}
		return Escape(fmt.Sprint(v))
	}
}
