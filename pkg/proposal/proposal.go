package proposal

import (
	"fmt"
	"strings"
)

// MinRows is the number of offers the comparison table is laid out for.
const MinRows = 3

// Field names a required column of the comparison table.
type Field string

const (
	FieldBidder Field = "ofertante"
	FieldTaxID  Field = "cnpj_cpf"
	FieldDate   Field = "data_cotacao"
	FieldValue  Field = "valor"
)

// RequiredFields lists the columns every relevant row must fill, in the order
// pending issues are reported.
var RequiredFields = []Field{FieldBidder, FieldTaxID, FieldDate, FieldValue}

// Label returns the column caption used in pending issues.
func (f Field) Label() string {
	switch f {
	case FieldBidder:
		return "Ofertante"
	case FieldTaxID:
		return "CNPJ/CPF"
	case FieldDate:
		return "Data da cotação"
	case FieldValue:
		return "Valor"
	default:
		return string(f)
	}
}

func (f Field) missingPhrase() string {
	if f == FieldDate {
		return f.Label() + " não informada"
	}
	return f.Label() + " não informado"
}

// Proposal is one row of the comparison table.
type Proposal struct {
	Label      string `json:"selecao"`
	Bidder     string `json:"ofertante"`
	TaxID      string `json:"cnpj_cpf"`
	TaxIDAlias string `json:"cnpj,omitempty"`
	Date       string `json:"data_cotacao"`
	DateAlias  string `json:"data,omitempty"`
	Value      Amount `json:"valor"`
	Note       string `json:"observacao,omitempty"`
	Selected   bool   `json:"selecionada,omitempty"`
	// Marked records an explicit choice made by the user or written in the
	// quotation. Selected is derived from it by EnsureSelection and is never
	// read back as a choice.
	Marked     bool   `json:"-"`
}

// DefaultLabel is the label given to the n-th row (1-based) when none was
// supplied.
func DefaultLabel(n int) string {
	return fmt.Sprintf("Cotação %d", n)
}

// Has reports whether the row fills field, counting aliases.
func (p Proposal) Has(field Field) bool {
	switch field {
	case FieldBidder:
		return Filled(p.Bidder)
	case FieldTaxID:
		return Filled(p.TaxID) || Filled(p.TaxIDAlias)
	case FieldDate:
		return Filled(p.Date) || Filled(p.DateAlias)
	case FieldValue:
		return p.Value.Filled()
	default:
		return false
	}
}

// Relevant reports whether the row describes an actual offer. Rows with none
// of bidder, tax id, value or date exist only to pad the table.
func (p Proposal) Relevant() bool {
	for _, field := range RequiredFields {
		if p.Has(field) {
			return true
		}
	}
	return false
}

// TaxIDValue returns the tax id, falling back to its alias.
func (p Proposal) TaxIDValue() string {
	if Filled(p.TaxID) {
		return p.TaxID
	}
	if Filled(p.TaxIDAlias) {
		return p.TaxIDAlias
	}
	return strings.TrimSpace(p.TaxID)
}

// DateValue returns the quote date, falling back to its alias.
func (p Proposal) DateValue() string {
	if Filled(p.Date) {
		return p.Date
	}
	if Filled(p.DateAlias) {
		return p.DateAlias
	}
	return strings.TrimSpace(p.Date)
}

// syncAliases copies the filled member of each alias pair over an empty
// counterpart.
func (p Proposal) syncAliases() Proposal {
	if !Filled(p.TaxID) && Filled(p.TaxIDAlias) {
		p.TaxID = p.TaxIDAlias
	}
	if !Filled(p.TaxIDAlias) && Filled(p.TaxID) {
		p.TaxIDAlias = p.TaxID
	}
	if !Filled(p.Date) && Filled(p.DateAlias) {
		p.Date = p.DateAlias
	}
	if !Filled(p.DateAlias) && Filled(p.Date) {
		p.DateAlias = p.Date
	}
	return p
}

// Row returns the rendering-context mapping of the proposal.
func (p Proposal) Row() map[string]any {
	marker := ""
	if p.Selected {
		marker = "X"
	}
	var number any
	if p.Value.Valid {
		number = p.Value.Number
	}
	return map[string]any{
		"selecao":        p.Label,
		"ofertante":      p.Bidder,
		"cnpj_cpf":       p.TaxIDValue(),
		"cnpj":           p.TaxIDValue(),
		"data_cotacao":   p.DateValue(),
		"data":           p.DateValue(),
		"valor":          p.Value.Display(),
		"valor_numerico": number,
		"observacao":     p.Note,
		"selecionada":    marker,
	}
}

// WithDefaultLabels fills empty labels positionally with DefaultLabel.
func WithDefaultLabels(rows []Proposal) []Proposal {
	out := make([]Proposal, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Label) == "" {
			row.Label = DefaultLabel(i + 1)
		}
		out[i] = row
	}
	return out
}

// Pad appends empty rows until the list holds at least minRows rows.
func Pad(rows []Proposal, minRows int) []Proposal {
	out := make([]Proposal, len(rows), max(len(rows), minRows))
	copy(out, rows)
	for len(out) < minRows {
		out = append(out, Proposal{Label: DefaultLabel(len(out) + 1)})
	}
	return out
}

// Consolidate applies every invariant the renderer relies on: default
// labels, synced aliases, exactly one selected relevant row, and at least
// MinRows rows.
func Consolidate(rows []Proposal) []Proposal {
	out := WithDefaultLabels(rows)
	for i := range out {
		out[i] = out[i].syncAliases()
	}
	return Pad(EnsureSelection(out), MinRows)
}
