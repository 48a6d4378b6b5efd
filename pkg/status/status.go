// Package status serialises the outcome of a generation run into a compact,
// transport-safe diagnostics payload.
package status

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-quotefill/pkg/extraction"
	"github.com/goliatone/go-quotefill/pkg/proposal"
)

// Flags reported by Report.Flag.
const (
	FlagComplete   = "complete"
	FlagIncomplete = "incomplete"
)

// Report is the diagnostics payload of a run.
type Report struct {
	Attempts []extraction.AttemptRecord `json:"attempts"`
	Verdict  proposal.Verdict           `json:"verdict"`
	Warnings []string                   `json:"warnings"`
}

// Build recomputes the verdict against the final proposal list and
// deduplicates warnings.
func Build(outcome extraction.Outcome) Report {
	attempts := outcome.Attempts
	if attempts == nil {
		attempts = []extraction.AttemptRecord{}
	}
	return Report{
		Attempts: attempts,
		Verdict:  proposal.Evaluate(outcome.Proposals),
		Warnings: Dedupe(outcome.Warnings),
	}
}

// Dedupe drops blank warnings and repeats that differ only in case, accents
// or spacing. The first spelling is kept.
func Dedupe(warnings []string) []string {
	out := make([]string, 0, len(warnings))
	seen := make(map[string]struct{}, len(warnings))
	for _, warning := range warnings {
		trimmed := strings.TrimSpace(warning)
		if trimmed == "" {
			continue
		}
		key := proposal.Fold(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// Flag returns the coarse completion flag.
func (r Report) Flag() string {
	if r.Verdict.Complete {
		return FlagComplete
	}
	return FlagIncomplete
}

// Encode returns the report as unpadded base64url compact JSON.
func (r Report) Encode() (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("status: marshal report: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload string) (Report, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return Report{}, fmt.Errorf("status: decode payload: %w", err)
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return Report{}, fmt.Errorf("status: unmarshal report: %w", err)
	}
	return report, nil
}
