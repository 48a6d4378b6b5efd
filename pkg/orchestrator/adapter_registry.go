package orchestrator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-quotefill/pkg/docxtpl"
)

// TemplateFormat renders one kind of template payload.
type TemplateFormat interface {
	Name() string
	// Detect reports whether raw looks like a payload of this format.
	Detect(raw []byte) bool
	Render(raw []byte, ctx docxtpl.Context, opts ...docxtpl.Option) ([]byte, error)
}

// Built-in format names.
const (
	FormatDocx = "docx"
	FormatPart = "xml"
)

var zipMagic = []byte("PK\x03\x04")

type docxFormat struct{}

func (docxFormat) Name() string { return FormatDocx }

func (docxFormat) Detect(raw []byte) bool { return bytes.HasPrefix(raw, zipMagic) }

func (docxFormat) Render(raw []byte, ctx docxtpl.Context, opts ...docxtpl.Option) ([]byte, error) {
	return docxtpl.RenderPackage(raw, ctx, opts...)
}

type partFormat struct{}

func (partFormat) Name() string { return FormatPart }

func (partFormat) Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '<' && utf8.Valid(trimmed)
}

func (partFormat) Render(raw []byte, ctx docxtpl.Context, opts ...docxtpl.Option) ([]byte, error) {
	out, err := docxtpl.RenderPart(string(raw), ctx, opts...)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// FormatRegistry stores template formats by name.
type FormatRegistry struct {
	mu      sync.RWMutex
	formats map[string]TemplateFormat
}

// NewFormatRegistry creates a registry holding the docx package and single
// XML part formats.
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{formats: make(map[string]TemplateFormat)}
	r.MustRegister(docxFormat{})
	r.MustRegister(partFormat{})
	return r
}

// Register adds a format by its Name(). Duplicate names return an error.
func (r *FormatRegistry) Register(format TemplateFormat) error {
	if format == nil {
		return fmt.Errorf("orchestrator: format is required")
	}
	name := normalizeFormatName(format.Name())
	if name == "" {
		return fmt.Errorf("orchestrator: format name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formats[name]; exists {
		return fmt.Errorf("orchestrator: format %q already registered", name)
	}
	r.formats[name] = format
	return nil
}

// MustRegister panics on registration failure.
func (r *FormatRegistry) MustRegister(format TemplateFormat) {
	if err := r.Register(format); err != nil {
		panic(err)
	}
}

// Get retrieves a format by name.
func (r *FormatRegistry) Get(name string) (TemplateFormat, error) {
	key := normalizeFormatName(name)
	if key == "" {
		return nil, fmt.Errorf("orchestrator: format name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	format, ok := r.formats[key]
	if !ok {
		return nil, fmt.Errorf("orchestrator: format %q not found", key)
	}
	return format, nil
}

// List returns a sorted list of format names.
func (r *FormatRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns all formats that match raw, in name order.
func (r *FormatRegistry) Detect(raw []byte) []TemplateFormat {
	if r == nil {
		return nil
	}
	var matches []TemplateFormat
	for _, name := range r.List() {
		format, err := r.Get(name)
		if err != nil {
			continue
		}
		if format.Detect(raw) {
			matches = append(matches, format)
		}
	}
	return matches
}

// resolve picks the format named by name, or detects it from raw.
func (r *FormatRegistry) resolve(name string, raw []byte) (TemplateFormat, error) {
	if strings.TrimSpace(name) != "" {
		return r.Get(name)
	}
	matches := r.Detect(raw)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("orchestrator: unable to detect template format: %w", docxtpl.ErrTemplateMalformed)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.Name()
		}
		return nil, fmt.Errorf("orchestrator: multiple formats matched template (%s), specify format", strings.Join(names, ", "))
	}
}

func normalizeFormatName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
