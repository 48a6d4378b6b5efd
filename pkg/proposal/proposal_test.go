package proposal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFold(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Não  Informado": "nao informado",
		" CNPJ/CPF ":     "cnpj/cpf",
		"Cotação\t1":     "cotacao 1",
		"":               "",
	}
	for input, want := range cases {
		if got := Fold(input); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRowUsesAliasesAndMarker(t *testing.T) {
	t.Parallel()

	row := Proposal{
		Label:      "Cotação 2",
		Bidder:     "Beta & Cia",
		TaxIDAlias: "22.222.222/0001-22",
		DateAlias:  "11/03/2025",
		Value:      ParseAmount("300"),
		Selected:   true,
	}.Row()

	want := map[string]any{
		"selecao":        "Cotação 2",
		"ofertante":      "Beta & Cia",
		"cnpj_cpf":       "22.222.222/0001-22",
		"cnpj":           "22.222.222/0001-22",
		"data_cotacao":   "11/03/2025",
		"data":           "11/03/2025",
		"valor":          "R$ 300,00",
		"valor_numerico": float64(300),
		"observacao":     "",
		"selecionada":    "X",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRowKeepsUnparsedValueText(t *testing.T) {
	t.Parallel()

	row := Proposal{Value: ParseAmount("a combinar")}.Row()
	if row["valor"] != "a combinar" || row["valor_numerico"] != nil {
		t.Fatalf("unexpected value columns: %v / %v", row["valor"], row["valor_numerico"])
	}
}

func TestRelevantIgnoresLabelAndNote(t *testing.T) {
	t.Parallel()

	if (Proposal{Label: "Cotação 1", Note: "sem resposta"}).Relevant() {
		t.Fatalf("label and note alone should not make a row relevant")
	}
	if !(Proposal{Date: "10/03/2025"}).Relevant() {
		t.Fatalf("a dated row should be relevant")
	}
	if (Proposal{Bidder: "não informado"}).Relevant() {
		t.Fatalf("sentinel bidder should not make a row relevant")
	}
}
