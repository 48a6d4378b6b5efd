package extraction

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-quotefill/pkg/proposal"
)

const (
	keyLabel    = "selecao"
	keyBidder   = "ofertante"
	keyTaxID    = "cnpj_cpf"
	keyDate     = "data_cotacao"
	keyValue    = "valor"
	keyNote     = "observacao"
	keySelected = "selecionada"
)

// fieldAliases maps folded key spellings onto canonical row keys.
var fieldAliases = map[string]string{
	"selecao":        keyLabel,
	"rotulo":         keyLabel,
	"label":          keyLabel,
	"cotacao":        keyLabel,
	"ofertante":      keyBidder,
	"fornecedor":     keyBidder,
	"empresa":        keyBidder,
	"razao_social":   keyBidder,
	"proponente":     keyBidder,
	"bidder":         keyBidder,
	"vendor":         keyBidder,
	"supplier":       keyBidder,
	"cnpj_cpf":       keyTaxID,
	"cpf_cnpj":       keyTaxID,
	"cnpj":           keyTaxID,
	"cpf":            keyTaxID,
	"documento":      keyTaxID,
	"tax_id":         keyTaxID,
	"data_cotacao":   keyDate,
	"data_proposta":  keyDate,
	"data":           keyDate,
	"date":           keyDate,
	"emissao":        keyDate,
	"valor":          keyValue,
	"valor_total":    keyValue,
	"valor_proposta": keyValue,
	"preco":          keyValue,
	"preco_total":    keyValue,
	"total":          keyValue,
	"value":          keyValue,
	"price":          keyValue,
	"observacao":     keyNote,
	"observacoes":    keyNote,
	"obs":            keyNote,
	"nota":           keyNote,
	"note":           keyNote,
	"selecionada":    keySelected,
	"selecionado":    keySelected,
	"vencedora":      keySelected,
	"selected":       keySelected,
}

// selectionMarkers are label values an oracle uses to flag the winning row.
var selectionMarkers = map[string]struct{}{
	"x":           {},
	"sim":         {},
	"selecionada": {},
	"selecionado": {},
	"vencedora":   {},
	"vencedor":    {},
}

var sanitizer = bluemonday.StrictPolicy()

// canonicalKey folds a key spelling: accents and case removed, spaces and
// hyphens turned into underscores.
func canonicalKey(key string) string {
	folded := proposal.Fold(key)
	folded = strings.NewReplacer(" ", "_", "-", "_").Replace(folded)
	if canonical, ok := fieldAliases[folded]; ok {
		return canonical
	}
	return folded
}

// cleanText strips markup from oracle free text and decodes entities.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return cleanText(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func amountValue(v any) proposal.Amount {
	switch t := v.(type) {
	case float64:
		return proposal.AmountFromNumber(t)
	case string:
		return proposal.ParseAmount(cleanText(t))
	default:
		return proposal.Amount{}
	}
}

func isMarker(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		_, ok := selectionMarkers[proposal.Fold(cleanText(t))]
		return ok
	default:
		return false
	}
}

// rowFields groups a raw row by canonical key. For every canonical key the
// first filled value wins, visiting the canonical spelling before aliases and
// aliases in sorted order so the result does not depend on map iteration.
func rowFields(row map[string]any) map[string]any {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := canonicalKey(keys[i]) == keys[i], canonicalKey(keys[j]) == keys[j]
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]any, len(row))
	for _, key := range keys {
		canonical := canonicalKey(key)
		value := row[key]
		if existing, ok := out[canonical]; ok && filledValue(existing) {
			continue
		}
		out[canonical] = value
	}
	return out
}

func filledValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return proposal.Filled(t)
	default:
		return true
	}
}

// ToProposal maps one raw oracle row onto a Proposal. A label that is only a
// selection marker flags the row as selected and is cleared so the default
// label applies.
func ToProposal(row map[string]any) proposal.Proposal {
	fields := rowFields(row)

	p := proposal.Proposal{
		Bidder: textValue(fields[keyBidder]),
		TaxID:  textValue(fields[keyTaxID]),
		Date:   textValue(fields[keyDate]),
		Value:  amountValue(fields[keyValue]),
		Note:   textValue(fields[keyNote]),
	}
	if label, ok := fields[keyLabel]; ok {
		if isMarker(label) {
			p.Marked = true
		} else {
			p.Label = textValue(label)
		}
	}
	if isMarker(fields[keySelected]) {
		p.Marked = true
	}
	p.TaxIDAlias = p.TaxID
	p.DateAlias = p.Date
	return p
}

// ToProposals maps raw rows and fills default labels positionally.
func ToProposals(rows []map[string]any) []proposal.Proposal {
	out := make([]proposal.Proposal, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToProposal(row))
	}
	return proposal.WithDefaultLabels(out)
}
