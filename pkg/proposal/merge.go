package proposal

import "strings"

// Merge combines two proposal lists positionally: row i of base with row i of
// fallback. Base values win wherever they are filled. The result keeps the
// selection invariant.
func Merge(base, fallback []Proposal) []Proposal {
	out := make([]Proposal, max(len(base), len(fallback)))
	for i := range out {
		switch {
		case i < len(base) && i < len(fallback):
			out[i] = MergeRow(base[i], fallback[i])
		case i < len(base):
			out[i] = base[i].syncAliases()
		default:
			out[i] = fallback[i].syncAliases()
		}
	}
	return EnsureSelection(out)
}

// MergeRow fills every empty field of base with the matching field of
// fallback and keeps the tax id and date aliases in sync.
func MergeRow(base, fallback Proposal) Proposal {
	merged := Proposal{
		Label:      pick(base.Label, fallback.Label),
		Bidder:     pick(base.Bidder, fallback.Bidder),
		TaxID:      pick(base.TaxID, fallback.TaxID),
		TaxIDAlias: pick(base.TaxIDAlias, fallback.TaxIDAlias),
		Date:       pick(base.Date, fallback.Date),
		DateAlias:  pick(base.DateAlias, fallback.DateAlias),
		Note:       pick(base.Note, fallback.Note),
		Value:      base.Value,
		Marked:     base.Marked || fallback.Marked,
	}
	if !base.Value.Filled() && fallback.Value.Filled() {
		merged.Value = fallback.Value
	}
	return merged.syncAliases()
}

func pick(base, fallback string) string {
	if Filled(base) {
		return base
	}
	if Filled(fallback) {
		return fallback
	}
	if strings.TrimSpace(base) != "" {
		return base
	}
	return fallback
}

// EnsureSelection marks exactly one relevant row as selected. An explicit
// Marked row that is relevant wins (the first one when several are marked);
// otherwise the row with the lowest parsed value is chosen, ties going to the
// first occurrence. Relevant rows without a parsable value are chosen only
// when no row has one. The input is not modified.
func EnsureSelection(rows []Proposal) []Proposal {
	out := make([]Proposal, len(rows))
	copy(out, rows)

	chosen := -1
	for i, row := range out {
		if row.Marked && row.Relevant() {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		chosen = lowestValue(out)
	}
	for i := range out {
		out[i].Selected = i == chosen
	}
	return out
}

func lowestValue(rows []Proposal) int {
	best := -1
	firstRelevant := -1
	for i, row := range rows {
		if !row.Relevant() {
			continue
		}
		if firstRelevant < 0 {
			firstRelevant = i
		}
		if !row.Value.Valid {
			continue
		}
		if best < 0 || row.Value.Number < rows[best].Value.Number {
			best = i
		}
	}
	if best < 0 {
		return firstRelevant
	}
	return best
}

// Selected returns the selected row, if any.
func Selected(rows []Proposal) (Proposal, bool) {
	for _, row := range rows {
		if row.Selected {
			return row, true
		}
	}
	return Proposal{}, false
}
