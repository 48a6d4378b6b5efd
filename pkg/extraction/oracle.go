package extraction

import (
	"context"
	"strings"

	"github.com/goliatone/go-quotefill/pkg/proposal"
)

// Source is one quotation handed to the oracle, either as inline text or as
// a file (Path on disk or Content in memory).
type Source struct {
	Name     string
	Text     string
	Path     string
	MIMEType string
	Content  []byte
}

// HasFile reports whether the source carries a file the oracle must upload.
func (s Source) HasFile() bool {
	return strings.TrimSpace(s.Path) != "" || len(s.Content) > 0
}

// FileRef identifies an uploaded source file.
type FileRef struct {
	Source   string
	Name     string
	URI      string
	MIMEType string
}

// Call is a single request to the oracle.
type Call struct {
	Attempt int
	Prompt  string
	Files   []FileRef
}

// Oracle returns raw JSON shaped like the result schema for a prompt.
type Oracle interface {
	Extract(ctx context.Context, call Call) ([]byte, error)
}

// FileStore is implemented by oracles that read source files through handles
// created ahead of the call.
type FileStore interface {
	Upload(ctx context.Context, source Source) (FileRef, error)
	Release(ctx context.Context, ref FileRef) error
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, call Call) ([]byte, error)

// Extract calls f.
func (f OracleFunc) Extract(ctx context.Context, call Call) ([]byte, error) {
	return f(ctx, call)
}

// Metadata describes the project the quotations belong to.
type Metadata struct {
	Institution string
	BudgetLine  string
	ProjectCode string
}

// Request is the input to Engine.Run.
type Request struct {
	Sources           []Source
	Metadata          Metadata
	Manual            []proposal.Proposal
	ManualDescription string
	// MaxAttempts overrides the engine budget when positive.
	MaxAttempts int
}

// AttemptRecord summarises one oracle attempt.
type AttemptRecord struct {
	Attempt      int      `json:"attempt"`
	RelevantRows int      `json:"relevant_rows"`
	Complete     bool     `json:"complete"`
	Issues       []string `json:"issues"`
	Error        bool     `json:"error"`
}

// Outcome is the consolidated result of a run. Proposals is padded to
// proposal.MinRows and carries exactly one selected relevant row whenever a
// relevant row exists.
type Outcome struct {
	Proposals   []proposal.Proposal
	Description string
	Attempts    []AttemptRecord
	Verdict     proposal.Verdict
	Warnings    []string
}
