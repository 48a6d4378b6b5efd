package proposal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeRowFallsBackFieldByField(t *testing.T) {
	t.Parallel()

	base := Proposal{Bidder: "", Value: ParseAmount("R$ 100")}
	fallback := Proposal{Bidder: "ACME", Value: ParseAmount("R$ 200")}

	got := MergeRow(base, fallback)
	if got.Bidder != "ACME" {
		t.Fatalf("Bidder = %q, want ACME", got.Bidder)
	}
	if got.Value.Raw != "R$ 100" || got.Value.Number != 100 {
		t.Fatalf("Value = %+v, want base value R$ 100", got.Value)
	}
}

func TestMergeRowTreatsSentinelAsEmpty(t *testing.T) {
	t.Parallel()

	base := Proposal{TaxID: "não informado", Date: "N/A"}
	fallback := Proposal{TaxIDAlias: "12.345.678/0001-90", Date: "10/03/2025"}

	got := MergeRow(base, fallback)
	if got.TaxID != "12.345.678/0001-90" || got.TaxIDAlias != "12.345.678/0001-90" {
		t.Fatalf("tax id aliases not synced: %+v", got)
	}
	if got.Date != "10/03/2025" || got.DateAlias != "10/03/2025" {
		t.Fatalf("date aliases not synced: %+v", got)
	}
}

func TestMergeIsPositional(t *testing.T) {
	t.Parallel()

	base := []Proposal{{Label: "Cotação 1", Bidder: "A"}}
	fallback := []Proposal{
		{Label: "Cotação 1", Bidder: "Z", Value: ParseAmount("10")},
		{Label: "Cotação 2", Bidder: "B", Value: ParseAmount("5")},
	}

	got := Merge(base, fallback)
	if len(got) != 2 {
		t.Fatalf("len(Merge) = %d, want 2", len(got))
	}
	if got[0].Bidder != "A" || got[0].Value.Number != 10 {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1].Bidder != "B" {
		t.Fatalf("row 1 = %+v", got[1])
	}
	if !got[1].Selected || got[0].Selected {
		t.Fatalf("expected cheapest row 1 selected, got %v/%v", got[0].Selected, got[1].Selected)
	}
}

func TestEnsureSelectionPicksLowestValue(t *testing.T) {
	t.Parallel()

	rows := []Proposal{
		{Bidder: "A", Value: ParseAmount("500")},
		{Bidder: "B", Value: ParseAmount("300")},
		{Bidder: "C", Value: ParseAmount("700")},
	}
	got := EnsureSelection(rows)
	if diff := cmp.Diff([]bool{false, true, false}, selectedFlags(got)); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if rows[1].Selected {
		t.Fatalf("EnsureSelection must not modify its input")
	}
}

func TestEnsureSelectionTieGoesToFirst(t *testing.T) {
	t.Parallel()

	rows := []Proposal{
		{Bidder: "A", Value: ParseAmount("700")},
		{Bidder: "B", Value: ParseAmount("300")},
		{Bidder: "C", Value: ParseAmount("R$ 300,00")},
	}
	if diff := cmp.Diff([]bool{false, true, false}, selectedFlags(EnsureSelection(rows))); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureSelectionKeepsSingleExplicitMark(t *testing.T) {
	t.Parallel()

	rows := []Proposal{
		{Bidder: "A", Value: ParseAmount("100")},
		{Bidder: "B", Value: ParseAmount("900"), Marked: true},
		{Bidder: "C", Value: ParseAmount("800"), Marked: true},
		{Marked: true},
	}
	if diff := cmp.Diff([]bool{false, true, false, false}, selectedFlags(EnsureSelection(rows))); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotTreatAutomaticSelectionAsMark(t *testing.T) {
	t.Parallel()

	first := Merge(nil, []Proposal{
		{Bidder: "A", Value: ParseAmount("500")},
		{Bidder: "B"},
	})
	if !first[0].Selected {
		t.Fatalf("expected A selected before B has a value")
	}
	second := Merge(first, []Proposal{{}, {Value: ParseAmount("300")}})
	if diff := cmp.Diff([]bool{false, true}, selectedFlags(second)); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if got := selectedFlags(Consolidate(second)); !got[1] || got[0] {
		t.Fatalf("Consolidate kept a stale selection: %v", got)
	}
}

func TestEnsureSelectionWithoutValues(t *testing.T) {
	t.Parallel()

	rows := []Proposal{{}, {Bidder: "B"}, {Bidder: "C"}}
	if diff := cmp.Diff([]bool{false, true, false}, selectedFlags(EnsureSelection(rows))); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if got := EnsureSelection([]Proposal{{}, {}}); got[0].Selected || got[1].Selected {
		t.Fatalf("padding rows must never be selected")
	}
}

func TestConsolidatePadsToMinimumRows(t *testing.T) {
	t.Parallel()

	got := Consolidate([]Proposal{{Bidder: "Única", Value: ParseAmount("10")}})
	if len(got) < MinRows {
		t.Fatalf("len(Consolidate) = %d, want >= %d", len(got), MinRows)
	}
	labels := make([]string, len(got))
	for i, row := range got {
		labels[i] = row.Label
	}
	if diff := cmp.Diff([]string{"Cotação 1", "Cotação 2", "Cotação 3"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if !got[0].Selected {
		t.Fatalf("only relevant row should be selected")
	}
}

func TestPadKeepsLongerLists(t *testing.T) {
	t.Parallel()

	rows := []Proposal{{}, {}, {}, {}}
	if got := Pad(rows, MinRows); len(got) != 4 {
		t.Fatalf("len(Pad) = %d, want 4", len(got))
	}
}

func selectedFlags(rows []Proposal) []bool {
	out := make([]bool, len(rows))
	for i, row := range rows {
		out[i] = row.Selected
	}
	return out
}
