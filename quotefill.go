// Package quotefill fills procurement comparison documents from quotation
// sources. The root package re-exports the pipeline entry points; the
// building blocks live under pkg/.
package quotefill

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-quotefill/pkg/docxtpl"
	"github.com/goliatone/go-quotefill/pkg/extraction"
	"github.com/goliatone/go-quotefill/pkg/orchestrator"
	"github.com/goliatone/go-quotefill/pkg/proposal"
	"github.com/goliatone/go-quotefill/pkg/status"
)

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// Option aliases orchestrator.Option.
type Option = orchestrator.Option

// Source aliases extraction.Source.
type Source = extraction.Source

// Metadata aliases extraction.Metadata.
type Metadata = extraction.Metadata

// Proposal aliases proposal.Proposal.
type Proposal = proposal.Proposal

// PartReport aliases docxtpl.PartReport.
type PartReport = docxtpl.PartReport

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate runs one request through a fresh orchestrator.
func Generate(ctx context.Context, req Request, options ...Option) (Result, error) {
	return orchestrator.New(options...).Generate(ctx, req)
}

// NormalizeTemplate repairs placeholder syntax in a .docx package or a single
// XML part, keeping the placeholders.
func NormalizeTemplate(raw []byte) ([]byte, error) {
	if isPackage(raw) {
		return docxtpl.NormalizePackage(raw)
	}
	part, err := partText(raw)
	if err != nil {
		return nil, err
	}
	return []byte(docxtpl.Normalize(part)), nil
}

// InspectTemplate reports the placeholders and structural issues of a
// template. A single XML part is reported under docxtpl.MainPart.
func InspectTemplate(raw []byte) ([]PartReport, error) {
	if isPackage(raw) {
		return docxtpl.InspectPackage(raw)
	}
	part, err := partText(raw)
	if err != nil {
		return nil, err
	}
	normalized := docxtpl.Normalize(part)
	return []PartReport{{
		Name: docxtpl.MainPart,
		Keys: docxtpl.Keys(normalized),
		Err:  docxtpl.Validate(normalized),
	}}, nil
}

// DecodeStatus parses the diagnostics payload returned in Result.Diagnostics.
func DecodeStatus(payload string) (status.Report, error) {
	return status.Decode(payload)
}

func isPackage(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("PK\x03\x04"))
}

func partText(raw []byte) (string, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return "", fmt.Errorf("quotefill: %w: template is empty", docxtpl.ErrTemplateMalformed)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("quotefill: %w: template is not valid UTF-8", docxtpl.ErrTemplateMalformed)
	}
	return string(raw), nil
}
