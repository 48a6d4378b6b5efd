package proposal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fullRow(label, bidder, value string) Proposal {
	return Proposal{
		Label:  label,
		Bidder: bidder,
		TaxID:  "12.345.678/0001-90",
		Date:   "01/02/2025",
		Value:  ParseAmount(value),
	}
}

func TestEvaluateComplete(t *testing.T) {
	t.Parallel()

	rows := []Proposal{
		fullRow("Cotação 1", "A", "100"),
		fullRow("Cotação 2", "B", "200"),
		fullRow("Cotação 3", "C", "300"),
		{Label: "Cotação 4"},
	}
	got := Evaluate(rows)
	want := Verdict{Complete: true, Issues: []string{}, RelevantRows: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("verdict mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateNoRelevantRows(t *testing.T) {
	t.Parallel()

	got := Evaluate(Pad(nil, MinRows))
	want := Verdict{Issues: []string{NoProposalsIssue}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("verdict mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateItemisesMissingFields(t *testing.T) {
	t.Parallel()

	first := fullRow("Cotação 1", "A", "100")
	first.TaxID = ""
	second := fullRow("Cotação 2", "B", "não informado")
	third := fullRow("", "C", "300")
	third.TaxID = "n/a"
	third.Date = ""

	got := Evaluate([]Proposal{first, second, third})
	want := Verdict{
		Issues: []string{
			"CNPJ/CPF não informado em Cotação 1, Cotação 3.",
			"Data da cotação não informada em Cotação 3.",
			"Valor não informado em Cotação 2.",
		},
		Missing: map[Field][]string{
			FieldTaxID: {"Cotação 1", "Cotação 3"},
			FieldDate:  {"Cotação 3"},
			FieldValue: {"Cotação 2"},
		},
		RelevantRows: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("verdict mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateTooFewRows(t *testing.T) {
	t.Parallel()

	got := Evaluate([]Proposal{fullRow("Cotação 1", "A", "1"), {}, {}})
	if got.Complete {
		t.Fatalf("expected incomplete verdict")
	}
	want := []string{"Apenas 1 proposta(s) preenchida(s); são necessárias ao menos 3."}
	if diff := cmp.Diff(want, got.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	rows := []Proposal{{Bidder: "ACME"}, {Bidder: "acme"}, {Bidder: "Beta"}, {Bidder: "Gama"}, {Bidder: "Delta"}}
	cases := []struct {
		name   string
		drafts []string
		line   string
		rows   []Proposal
		files  []string
		want   string
	}{
		{name: "draft wins", drafts: []string{"", "Compra de reagentes"}, line: "Material", rows: rows, want: "Compra de reagentes"},
		{name: "bidders", line: "Material de consumo", rows: rows, want: "Aquisição de Material de consumo conforme cotações de ACME, Beta e Gama."},
		{name: "files", line: "Serviços", files: []string{"/tmp/a.pdf", "b.pdf", "b.pdf"}, want: "Aquisição de Serviços conforme cotações anexas (a.pdf e b.pdf)."},
		{name: "nothing", want: "Aquisição de itens."},
	}
	for _, tc := range cases {
		if got := Describe(tc.drafts, tc.line, tc.rows, tc.files); got != tc.want {
			t.Fatalf("%s: Describe() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
