package proposal

import (
	"fmt"
	"path/filepath"
	"strings"
)

const maxDescribedBidders = 3

// Describe returns the object description for the generated document. The
// first filled draft wins; otherwise one is synthesised from the budget line
// and up to three distinct bidder names, or from the quotation file names when
// no bidder is known. The result is never blank.
func Describe(drafts []string, budgetLine string, rows []Proposal, fileNames []string) string {
	for _, draft := range drafts {
		if Filled(draft) {
			return strings.TrimSpace(draft)
		}
	}

	subject := strings.TrimSpace(budgetLine)
	if subject == "" {
		subject = "itens"
	}

	if bidders := distinctBidders(rows); len(bidders) > 0 {
		return fmt.Sprintf("Aquisição de %s conforme cotações de %s.", subject, joinPT(bidders))
	}
	if names := distinctNames(fileNames); len(names) > 0 {
		return fmt.Sprintf("Aquisição de %s conforme cotações anexas (%s).", subject, joinPT(names))
	}
	return fmt.Sprintf("Aquisição de %s.", subject)
}

func distinctBidders(rows []Proposal) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		if !Filled(row.Bidder) {
			continue
		}
		name := strings.TrimSpace(row.Bidder)
		key := Fold(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
		if len(out) == maxDescribedBidders {
			break
		}
	}
	return out
}

func distinctNames(fileNames []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, name := range fileNames {
		base := strings.TrimSpace(filepath.Base(strings.TrimSpace(name)))
		if base == "" || base == "." || base == string(filepath.Separator) {
			continue
		}
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		out = append(out, base)
	}
	return out
}

// joinPT joins items the Portuguese way: "A", "A e B", "A, B e C".
func joinPT(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " e " + items[len(items)-1]
	}
}
