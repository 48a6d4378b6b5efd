package manualentry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quotefill/pkg/proposal"
)

func TestDecodeYAMLAndJSON(t *testing.T) {
	t.Parallel()

	yamlDoc := `
objeto: " Aquisição de reagentes "
propostas:
  - ofertante: Alfa Comércio
    cnpj_cpf: 11.111.111/0001-11
    data_cotacao: 10/03/2025
    valor: 500
  - ofertante: Beta
    valor: "R$ 1.234,50"
    selecionada: true
`
	jsonDoc := `{"objeto":"Aquisição de reagentes","propostas":[` +
		`{"ofertante":"Alfa Comércio","cnpj_cpf":"11.111.111/0001-11","data_cotacao":"10/03/2025","valor":500},` +
		`{"ofertante":"Beta","valor":"R$ 1.234,50","selecionada":true}]}`

	want := Entry{
		Description: "Aquisição de reagentes",
		Proposals: []proposal.Proposal{
			{Bidder: "Alfa Comércio", TaxID: "11.111.111/0001-11", Date: "10/03/2025", Value: proposal.AmountFromNumber(500)},
			{Bidder: "Beta", Value: proposal.ParseAmount("R$ 1.234,50"), Marked: true},
		},
	}

	cases := map[string]struct {
		data   string
		format Format
	}{
		"yaml": {data: yamlDoc, format: FormatYAML},
		"json": {data: jsonDoc, format: FormatJSON},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("entry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsUnsupportedValues(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("propostas:\n  - valor: [1, 2]\n"), FormatYAML)
	if err == nil {
		t.Fatalf("expected error for list value")
	}
	if _, err := Decode([]byte("{}"), Format("toml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadPicksDecoderFromExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "manual.yml")
	if err := os.WriteFile(path, []byte("propostas:\n  - ofertante: Gama\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	entry, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entry.Proposals) != 1 || entry.Proposals[0].Bidder != "Gama" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := Load(filepath.Join(dir, "manual.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
