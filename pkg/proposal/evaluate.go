package proposal

import (
	"fmt"
	"strings"
)

// NoProposalsIssue is the pending issue reported when no row is relevant.
const NoProposalsIssue = "Nenhuma proposta preenchida."

// Verdict is the completeness judgment over a proposal list.
type Verdict struct {
	Complete     bool               `json:"complete"`
	Issues       []string           `json:"issues"`
	Missing      map[Field][]string `json:"missing,omitempty"`
	RelevantRows int                `json:"relevant_rows"`
}

// Evaluate scores rows: the list is complete when at least MinRows rows are
// relevant and none of them misses a required field. Padding rows are
// ignored.
func Evaluate(rows []Proposal) Verdict {
	verdict := Verdict{Issues: []string{}}
	missing := make(map[Field][]string)

	for i, row := range rows {
		if !row.Relevant() {
			continue
		}
		verdict.RelevantRows++
		label := strings.TrimSpace(row.Label)
		if label == "" {
			label = DefaultLabel(i + 1)
		}
		for _, field := range RequiredFields {
			if !row.Has(field) {
				missing[field] = append(missing[field], label)
			}
		}
	}

	switch {
	case verdict.RelevantRows == 0:
		verdict.Issues = append(verdict.Issues, NoProposalsIssue)
	case verdict.RelevantRows < MinRows:
		verdict.Issues = append(verdict.Issues, fmt.Sprintf(
			"Apenas %d proposta(s) preenchida(s); são necessárias ao menos %d.",
			verdict.RelevantRows, MinRows,
		))
	}

	for _, field := range RequiredFields {
		labels, ok := missing[field]
		if !ok {
			continue
		}
		verdict.Issues = append(verdict.Issues, fmt.Sprintf("%s em %s.", field.missingPhrase(), strings.Join(labels, ", ")))
	}
	if len(missing) > 0 {
		verdict.Missing = missing
	}

	verdict.Complete = verdict.RelevantRows >= MinRows && len(missing) == 0
	return verdict
}
