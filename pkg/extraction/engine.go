package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-quotefill/pkg/prompt"
	"github.com/goliatone/go-quotefill/pkg/proposal"
)

// DefaultMaxAttempts bounds the oracle calls of a run.
const DefaultMaxAttempts = 3

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for attempt and cleanup diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPrompts replaces the embedded prompt templates.
func WithPrompts(prompts *prompt.Engine) Option {
	return func(e *Engine) {
		if prompts != nil {
			e.prompts = prompts
		}
	}
}

// Engine runs the extraction loop against one oracle. It holds no per-run
// state and is safe for concurrent use when the oracle is.
type Engine struct {
	oracle      Oracle
	prompts     *prompt.Engine
	maxAttempts int
	logger      *zap.Logger
}

var defaultPrompts = sync.OnceValue(func() *prompt.Engine {
	return prompt.Must(prompt.New())
})

// New builds an Engine. A nil oracle is allowed: runs then consolidate the
// manual proposals without any attempt.
func New(oracle Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle:      oracle,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.prompts == nil {
		e.prompts = defaultPrompts()
	}
	return e
}

type state int

const (
	stateDrafting state = iota
	stateEvaluating
	stateRetry
	stateDone
)

type run struct {
	req         Request
	maxAttempts int
	files       []FileRef
	attached    map[string]bool

	attempt  int
	best     []proposal.Proposal
	verdict  proposal.Verdict
	records  []AttemptRecord
	drafts   []string
	warnings []string
}

// Run executes the attempt loop and returns the consolidated outcome. It
// never fails: oracle errors are reported through Outcome.Warnings and
// Outcome.Attempts.
func (e *Engine) Run(ctx context.Context, req Request) Outcome {
	r := &run{
		req:         req,
		maxAttempts: e.maxAttempts,
		attached:    make(map[string]bool),
		best:        proposal.WithDefaultLabels(req.Manual),
	}
	if req.MaxAttempts > 0 {
		r.maxAttempts = req.MaxAttempts
	}
	r.verdict = proposal.Evaluate(r.best)

	if e.oracle != nil && len(req.Sources) > 0 {
		defer e.release(ctx, r)
		e.upload(ctx, r)
		e.loop(ctx, r)
	} else {
		e.logger.Debug("extraction skipped",
			zap.Bool("oracle", e.oracle != nil),
			zap.Int("sources", len(req.Sources)),
		)
	}

	return r.outcome()
}

func (e *Engine) loop(ctx context.Context, r *run) {
	r.attempt = 1
	st := stateDrafting
	for st != stateDone {
		switch st {
		case stateDrafting:
			if e.draft(ctx, r) {
				st = stateEvaluating
			} else {
				st = stateRetry
			}
		case stateEvaluating:
			r.verdict = proposal.Evaluate(r.best)
			r.records = append(r.records, AttemptRecord{
				Attempt:      r.attempt,
				RelevantRows: r.verdict.RelevantRows,
				Complete:     r.verdict.Complete,
				Issues:       r.verdict.Issues,
			})
			e.logger.Debug("extraction attempt evaluated",
				zap.Int("attempt", r.attempt),
				zap.Int("relevant_rows", r.verdict.RelevantRows),
				zap.Bool("complete", r.verdict.Complete),
			)
			if r.verdict.Complete {
				st = stateDone
			} else {
				st = stateRetry
			}
		case stateRetry:
			if r.attempt >= r.maxAttempts {
				st = stateDone
				continue
			}
			r.attempt++
			st = stateDrafting
		}
	}
}

// draft performs one oracle call and merges its rows into the running best.
// A failed call is recorded and reported as false.
func (e *Engine) draft(ctx context.Context, r *run) bool {
	var text string
	data, err := r.promptData()
	if err == nil {
		text, err = e.prompts.Render(data.Name(), data)
	}
	if err != nil {
		e.fail(r, fmt.Errorf("extraction: render prompt: %w", err))
		return false
	}

	raw, err := e.oracle.Extract(ctx, Call{Attempt: r.attempt, Prompt: text, Files: r.files})
	if err != nil {
		e.fail(r, fmt.Errorf("extraction: call oracle: %w", err))
		return false
	}
	result, err := DecodeResult(raw)
	if err != nil {
		e.fail(r, err)
		return false
	}

	r.best = proposal.Merge(r.best, ToProposals(result.Rows))
	if result.Draft != "" {
		r.drafts = append(r.drafts, result.Draft)
	}
	r.warnings = append(r.warnings, result.Warnings...)
	return true
}

func (e *Engine) fail(r *run, err error) {
	var schemaErr *SchemaError
	message := fmt.Sprintf("Tentativa %d: falha na extração automática (%v).", r.attempt, err)
	if errors.As(err, &schemaErr) {
		message = fmt.Sprintf("Tentativa %d: resposta da extração fora do formato esperado.", r.attempt)
	}
	r.warnings = append(r.warnings, message)
	r.records = append(r.records, AttemptRecord{
		Attempt:      r.attempt,
		RelevantRows: r.verdict.RelevantRows,
		Complete:     false,
		Issues:       r.verdict.Issues,
		Error:        true,
	})
	e.logger.Warn("extraction attempt failed", zap.Int("attempt", r.attempt), zap.Error(err))
}

func (r *run) promptData() (prompt.Data, error) {
	data := prompt.Data{
		Institution: r.req.Metadata.Institution,
		BudgetLine:  r.req.Metadata.BudgetLine,
		ProjectCode: r.req.Metadata.ProjectCode,
		Description: r.req.ManualDescription,
		Attempt:     r.attempt,
		MaxAttempts: r.maxAttempts,
	}
	for _, source := range r.req.Sources {
		data.Sources = append(data.Sources, prompt.Source{
			Name:     source.Name,
			Text:     source.Text,
			Attached: r.attached[source.Name],
		})
	}

	if r.attempt == 1 {
		if manual := relevantRows(r.req.Manual); len(manual) > 0 {
			encoded, err := json.Marshal(manual)
			if err != nil {
				return prompt.Data{}, err
			}
			data.Manual = string(encoded)
		}
		return data, nil
	}

	previous, err := json.MarshalIndent(map[string]any{"propostas": r.best}, "", "  ")
	if err != nil {
		return prompt.Data{}, err
	}
	data.Previous = string(previous)
	data.Issues = r.verdict.Issues
	return data, nil
}

func relevantRows(rows []proposal.Proposal) []proposal.Proposal {
	var out []proposal.Proposal
	for _, row := range rows {
		if row.Relevant() {
			out = append(out, row)
		}
	}
	return out
}

func (e *Engine) upload(ctx context.Context, r *run) {
	store, ok := e.oracle.(FileStore)
	if !ok {
		return
	}
	for _, source := range r.req.Sources {
		if !source.HasFile() {
			continue
		}
		ref, err := store.Upload(ctx, source)
		if err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("Não foi possível enviar o arquivo %s para a extração.", source.Name))
			e.logger.Warn("extraction upload failed", zap.String("source", source.Name), zap.Error(err))
			continue
		}
		r.files = append(r.files, ref)
		r.attached[source.Name] = true
	}
}

func (e *Engine) release(ctx context.Context, r *run) {
	store, ok := e.oracle.(FileStore)
	if !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, ref := range r.files {
		if err := store.Release(ctx, ref); err != nil {
			e.logger.Warn("extraction release failed", zap.String("file", ref.Name), zap.Error(err))
		}
	}
}

func (r *run) outcome() Outcome {
	final := proposal.Consolidate(r.best)

	drafts := make([]string, 0, len(r.drafts)+1)
	drafts = append(drafts, r.req.ManualDescription)
	for i := len(r.drafts) - 1; i >= 0; i-- {
		drafts = append(drafts, r.drafts[i])
	}
	names := make([]string, 0, len(r.req.Sources))
	for _, source := range r.req.Sources {
		name := source.Name
		if name == "" {
			name = source.Path
		}
		names = append(names, name)
	}

	return Outcome{
		Proposals:   final,
		Description: proposal.Describe(drafts, r.req.Metadata.BudgetLine, final, names),
		Attempts:    r.records,
		Verdict:     proposal.Evaluate(final),
		Warnings:    r.warnings,
	}
}
