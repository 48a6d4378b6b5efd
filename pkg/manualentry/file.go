package manualentry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-quotefill/pkg/proposal"
)

// Format names a proposal file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// record is the on-disk shape of one proposal. Value stays untyped so files
// may carry either "R$ 1.500,00" or 1500.
type record struct {
	Label    string `yaml:"selecao" json:"selecao"`
	Bidder   string `yaml:"ofertante" json:"ofertante"`
	TaxID    string `yaml:"cnpj_cpf" json:"cnpj_cpf"`
	Date     string `yaml:"data_cotacao" json:"data_cotacao"`
	Value    any    `yaml:"valor" json:"valor"`
	Note     string `yaml:"observacao" json:"observacao"`
	Selected bool   `yaml:"selecionada" json:"selecionada"`
}

type document struct {
	Description string   `yaml:"objeto" json:"objeto"`
	Proposals   []record `yaml:"propostas" json:"propostas"`
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads a proposal file, picking the decoder from its extension.
func Load(path string) (Entry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Entry{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("manualentry: read %s: %w", path, err)
	}
	return Decode(data, format)
}

// Decode parses a proposal document:
//
//	objeto: Aquisição de reagentes
//	propostas:
//	  - ofertante: Alfa Comércio
//	    cnpj_cpf: 11.111.111/0001-11
//	    data_cotacao: 10/03/2025
//	    valor: 500
func Decode(data []byte, format Format) (Entry, error) {
	var doc document
	if len(bytes.TrimSpace(data)) == 0 {
		return Entry{}, nil
	}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Entry{}, fmt.Errorf("manualentry: decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Entry{}, fmt.Errorf("manualentry: decode json: %w", err)
		}
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	entry := Entry{Description: strings.TrimSpace(doc.Description)}
	for i, rec := range doc.Proposals {
		value, err := amountOf(rec.Value)
		if err != nil {
			return Entry{}, fmt.Errorf("manualentry: proposal %d: %w", i+1, err)
		}
		entry.Proposals = append(entry.Proposals, proposal.Proposal{
			Label:  strings.TrimSpace(rec.Label),
			Bidder: strings.TrimSpace(rec.Bidder),
			TaxID:  strings.TrimSpace(rec.TaxID),
			Date:   strings.TrimSpace(rec.Date),
			Value:  value,
			Note:   strings.TrimSpace(rec.Note),
			Marked: rec.Selected,
		})
	}
	return entry, nil
}

func amountOf(v any) (proposal.Amount, error) {
	switch t := v.(type) {
	case nil:
		return proposal.Amount{}, nil
	case string:
		return proposal.ParseAmount(t), nil
	case int:
		return proposal.AmountFromNumber(float64(t)), nil
	case int64:
		return proposal.AmountFromNumber(float64(t)), nil
	case float64:
		return proposal.AmountFromNumber(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return proposal.Amount{}, fmt.Errorf("valor %q: %w", t, err)
		}
		return proposal.AmountFromNumber(f), nil
	default:
		return proposal.Amount{}, fmt.Errorf("valor of type %T is not supported", v)
	}
}
