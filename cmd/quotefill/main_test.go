package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-quotefill/pkg/docxtpl"
	"github.com/goliatone/go-quotefill/pkg/testsupport"
)

const manualYAML = `objeto: Aquisição de reagentes
propostas:
  - ofertante: Alfa Comércio
    cnpj_cpf: 11.111.111/0001-11
    data_cotacao: 10/03/2025
    valor: 500
  - ofertante: Beta
    cnpj_cpf: 22.222.222/0001-22
    data_cotacao: 11/03/2025
    valor: "R$ 300,00"
  - ofertante: Gama
    cnpj_cpf: 33.333.333/0001-33
    data_cotacao: 12/03/2025
    valor: 700
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestGenerateOfflineWithManualFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "quotefill.yaml", []byte("oracle:\n  provider: none\n"))
	template := writeFile(t, dir, "mapa.docx", testsupport.MinimalDocx(t,
		`<w:p><w:r><w:t>{{objeto}}|{{proposta_selecionada.ofertante}}|{{completo}}</w:t></w:r></w:p>`))
	manual := writeFile(t, dir, "manual.yaml", []byte(manualYAML))

	stdout, err := execute(t, "--config", cfg, "generate", "-t", template, "-m", manual, "--rubrica", "Reagentes")
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if !strings.Contains(stdout, "status: complete") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}

	output := filepath.Join(dir, "mapa-preenchido.docx")
	rendered, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	body, err := docxtpl.ReadPart(rendered, docxtpl.MainPart)
	if err != nil {
		t.Fatalf("ReadPart returned error: %v", err)
	}
	if !strings.Contains(body, "<w:t>Aquisição de reagentes|Beta|sim</w:t>") {
		t.Fatalf("unexpected body:\n%s", body)
	}

	var payload string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "diagnostics: ") {
			payload = strings.TrimPrefix(line, "diagnostics: ")
		}
	}
	if payload == "" {
		t.Fatalf("diagnostics line missing:\n%s", stdout)
	}
	decoded, err := execute(t, "--config", cfg, "decode-status", payload)
	if err != nil {
		t.Fatalf("decode-status returned error: %v", err)
	}
	if !strings.Contains(decoded, `"complete": true`) {
		t.Fatalf("decoded report missing completion:\n%s", decoded)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "ok.xml", []byte(`<w:t>{{#propostas}}{{ofertante}}{{/propostas}}</w:t>`))
	bad := writeFile(t, dir, "bad.xml", []byte(`<w:t>{{#propostas}}{{ofertante}}</w:t>`))

	if _, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "validate", good); err == nil || !strings.Contains(err.Error(), "read") {
		t.Fatalf("expected missing config error, got %v", err)
	}

	cfg := writeFile(t, dir, "quotefill.yaml", []byte("log:\n  level: error\n"))
	stdout, err := execute(t, "--config", cfg, "validate", good)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if !strings.Contains(stdout, docxtpl.MainPart+": propostas, ofertante") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}

	stdout, err = execute(t, "--config", cfg, "validate", bad)
	if err == nil {
		t.Fatalf("expected validate to fail")
	}
	if !strings.Contains(stdout, "never closed") {
		t.Fatalf("issue not printed:\n%s", stdout)
	}
}

func TestNormalizeWritesRepairedTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "quotefill.yaml", nil)
	template := writeFile(t, dir, "part.xml", []byte(`<w:r><w:t>{{obj</w:t></w:r><w:r><w:t>eto}}</w:t></w:r>`))
	target := filepath.Join(dir, "normalized.xml")

	if _, err := execute(t, "--config", cfg, "normalize", template, "-o", target); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "{{objeto}}") {
		t.Fatalf("template not repaired: %s", data)
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "base.yaml", nil)
	path := filepath.Join(dir, "quotefill.yaml")

	if _, err := execute(t, "--config", cfg, "init-config", path); err != nil {
		t.Fatalf("init-config returned error: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "init-config", path); err == nil {
		t.Fatalf("expected second init-config to fail")
	}
	if _, err := execute(t, "--config", path, "init-config", "--force", path); err != nil {
		t.Fatalf("init-config --force returned error: %v", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	t.Parallel()

	if got := defaultOutput("dir/mapa.docx"); got != "dir/mapa-preenchido.docx" {
		t.Fatalf("defaultOutput = %q", got)
	}
}
