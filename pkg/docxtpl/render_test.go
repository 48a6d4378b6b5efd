package docxtpl

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderLoopPreservesRowOrder(t *testing.T) {
	t.Parallel()

	ctx := Context{
		"items": []map[string]any{{"name": "A"}, {"name": "B"}},
	}
	got, err := Render("{{#items}}{{name}}{{/items}}", ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "AB" {
		t.Fatalf("Render() = %q, want %q", got, "AB")
	}
	if strings.Contains(got, "{{") {
		t.Fatalf("residual placeholder in %q", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	markup := "<w:t>{{titulo}}</w:t>{{#linhas}}<w:t>{{n}}:{{titulo}}</w:t>{{/linhas}}"
	ctx := Context{
		"titulo": "Mapa",
		"linhas": []any{map[string]any{"n": 1}, map[string]any{"n": 2, "titulo": "Interno"}},
	}

	first, err := Render(markup, ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	second, err := Render(markup, ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if first != second {
		t.Fatalf("Render not deterministic: %q vs %q", first, second)
	}
	want := "<w:t>Mapa</w:t><w:t>1:Mapa</w:t><w:t>2:Interno</w:t>"
	if first != want {
		t.Fatalf("Render() = %q, want %q", first, want)
	}
}

func TestRenderNestedLoopsOfDifferentKeys(t *testing.T) {
	t.Parallel()

	ctx := Context{
		"grupos": []map[string]any{
			{"nome": "G1", "itens": []map[string]any{{"v": "a"}, {"v": "b"}}},
			{"nome": "G2", "itens": []map[string]any{}},
		},
	}
	got, err := Render("{{#grupos}}[{{nome}}:{{#itens}}{{v}}{{/itens}}]{{/grupos}}", ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if want := "[G1:ab][G2:]"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderEscapesMarkup(t *testing.T) {
	t.Parallel()

	got, err := Render("<w:t>{{v}}</w:t>", Context{"v": `<b> & "x" 'y'`})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	want := "<w:t>&lt;b&gt; &amp; &quot;x&quot; &apos;y&apos;</w:t>"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderScalars(t *testing.T) {
	t.Parallel()

	ctx := Context{
		"num":      1234.5,
		"int":      7,
		"flag":     true,
		"nil":      nil,
		"a.b":      "direct",
		"nested":   map[string]any{"deep": map[string]any{"leaf": "ok"}},
		"sequence": []string{"x"},
		"rows":     []map[string]any{{"licitante": "A"}},
		"ctx":      Context{"k": "v"},
	}

	cases := map[string]string{
		"{{num}}":                     "1234.5",
		"{{int}}":                     "7",
		"{{flag}}":                    "true",
		"{{nil}}":                     "",
		"{{missing}}":                 "",
		"{{a.b}}":                     "direct",
		"{{nested.deep.leaf}}":        "ok",
		"{{nested.nope}}":             "",
		"{{#num}}x{{/num}}":           "",
		"{{#missing}}x{{/missing}}":   "",
		"{{#sequence}}x{{/sequence}}": "x",
		"{{sequence}}":                "",
		"{{rows}}":                    "",
		"{{nested}}":                  "",
		"{{ctx}}":                     "",
	}
	for markup, want := range cases {
		got, err := Render(markup, ctx)
		if err != nil {
			t.Fatalf("Render(%q) returned error: %v", markup, err)
		}
		if got != want {
			t.Fatalf("Render(%q) = %q, want %q", markup, got, want)
		}
	}
}

func TestRenderRecoversFromUnbalancedLoops(t *testing.T) {
	t.Parallel()

	ctx := Context{"a": []map[string]any{{"x": "1"}}}
	cases := map[string]string{
		"{{#a}}X{{#a}}Y{{/a}}Z{{/a}}": "XYZ",
		"{{#a}}sem fim":               "sem fim",
		"antes{{/a}}depois":           "antesdepois",
		"{{#a}}{{#b}}{{x}}{{/a}}":     "1",
		"{{não é válido}}ok":          "ok",
	}
	for markup, want := range cases {
		got, err := Render(markup, ctx)
		if err != nil {
			t.Fatalf("Render(%q) returned error: %v", markup, err)
		}
		if got != want {
			t.Fatalf("Render(%q) = %q, want %q", markup, got, want)
		}
	}
}

func TestRenderStrictReportsSyntaxIssues(t *testing.T) {
	t.Parallel()

	_, err := Render("{{#a}}x", Context{}, WithStrict())
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if len(syntaxErr.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(syntaxErr.Issues))
	}
	if !strings.Contains(syntaxErr.Issues[0].Message, "never closed") {
		t.Fatalf("unexpected issue message %q", syntaxErr.Issues[0].Message)
	}
}

func TestRenderMissingHook(t *testing.T) {
	t.Parallel()

	var missing []string
	got, err := Render("{{a}}{{b}}{{c.d}}", Context{"a": "x", "b": nil}, WithMissingHook(func(path string) {
		missing = append(missing, path)
	}))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "x" {
		t.Fatalf("Render() = %q, want %q", got, "x")
	}
	if diff := cmp.Diff([]string{"b", "c.d"}, missing); diff != "" {
		t.Fatalf("missing paths mismatch (-want +got):\n%s", diff)
	}
}

func TestNewContextFromStruct(t *testing.T) {
	t.Parallel()

	type row struct {
		Nome string `json:"nome"`
	}
	ctx, err := NewContext(struct {
		Linhas []row `json:"linhas"`
	}{Linhas: []row{{Nome: "A"}, {Nome: "B"}}})
	if err != nil {
		t.Fatalf("NewContext returned error: %v", err)
	}
	got, err := Render("{{#linhas}}{{nome}};{{/linhas}}", ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "A;B;" {
		t.Fatalf("Render() = %q, want %q", got, "A;B;")
	}
}

func TestKeysListsReferencedNames(t *testing.T) {
	t.Parallel()

	got := Keys("{{#propostas}}{{ofertante}}{{/propostas}}{{objeto}}{{ofertante}}")
	want := []string{"propostas", "ofertante", "objeto"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Keys mismatch (-want +got):\n%s", diff)
	}
}
