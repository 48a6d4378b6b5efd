package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-quotefill/pkg/docxtpl"
	"github.com/goliatone/go-quotefill/pkg/extraction"
	"github.com/goliatone/go-quotefill/pkg/prompt"
	"github.com/goliatone/go-quotefill/pkg/proposal"
	"github.com/goliatone/go-quotefill/pkg/status"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithOracle injects the extraction oracle. Without one, Generate renders the
// manual proposals only.
func WithOracle(oracle extraction.Oracle) Option {
	return func(o *Orchestrator) {
		o.oracle = oracle
	}
}

// WithLogger injects a logger shared with the extraction engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxAttempts overrides the extraction attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		o.maxAttempts = n
	}
}

// WithStrictTemplates makes template syntax problems abort Generate instead
// of rendering with best-effort recovery.
func WithStrictTemplates(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// WithPrompts injects custom prompt templates.
func WithPrompts(prompts *prompt.Engine) Option {
	return func(o *Orchestrator) {
		o.prompts = prompts
	}
}

// WithFormats injects a template format registry.
func WithFormats(formats *FormatRegistry) Option {
	return func(o *Orchestrator) {
		o.formats = formats
	}
}

// WithTransformers registers transformers that run against the rendering
// context, in order, before the template renders.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// Orchestrator coordinates extraction, consolidation and rendering for one
// document per Generate call. It keeps no per-call state.
type Orchestrator struct {
	oracle       extraction.Oracle
	logger       *zap.Logger
	maxAttempts  int
	strict       bool
	prompts      *prompt.Engine
	formats      *FormatRegistry
	transformers []Transformer
	engine       *extraction.Engine
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.formats == nil {
		o.formats = NewFormatRegistry()
	}
	o.engine = extraction.New(o.oracle,
		extraction.WithLogger(o.logger),
		extraction.WithMaxAttempts(o.maxAttempts),
		extraction.WithPrompts(o.prompts),
	)
	return o
}

// Request describes one document generation.
type Request struct {
	// Template is a .docx package or a single XML part.
	Template []byte
	// Format names the template format; detected from Template when empty.
	Format string

	Sources           []extraction.Source
	Metadata          extraction.Metadata
	Manual            []proposal.Proposal
	ManualDescription string
	// MaxAttempts overrides the configured attempt budget when positive.
	MaxAttempts int

	// Extra carries caller values for the rendering context. Generated keys
	// take precedence.
	Extra map[string]any
}

// Result is the output of Generate.
type Result struct {
	Document []byte
	Complete bool
	// Diagnostics is the encoded status report.
	Diagnostics string
	Report      status.Report
	Outcome     extraction.Outcome
	// Unresolved lists placeholder paths the context could not resolve.
	Unresolved []string
}

// Generate runs extraction, builds the rendering context and renders the
// template. Extraction problems never fail the call; only a malformed template
// or, in strict mode, a template syntax error does.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if len(req.Template) == 0 {
		return Result{}, fmt.Errorf("orchestrator: template is required: %w", docxtpl.ErrTemplateMalformed)
	}
	format, err := o.formats.resolve(req.Format, req.Template)
	if err != nil {
		return Result{}, err
	}

	outcome := o.engine.Run(ctx, extraction.Request{
		Sources:           req.Sources,
		Metadata:          req.Metadata,
		Manual:            req.Manual,
		ManualDescription: req.ManualDescription,
		MaxAttempts:       req.MaxAttempts,
	})
	report := status.Build(outcome)
	diagnostics, err := report.Encode()
	if err != nil {
		return Result{}, err
	}

	data := BuildContext(req.Metadata, req.Extra, outcome, report)
	if err := o.applyTransformers(ctx, data); err != nil {
		return Result{}, err
	}

	unresolved := map[string]struct{}{}
	opts := []docxtpl.Option{docxtpl.WithMissingHook(func(path string) {
		unresolved[path] = struct{}{}
	})}
	if o.strict {
		opts = append(opts, docxtpl.WithStrict())
	}

	document, err := format.Render(req.Template, data, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: render %s template: %w", format.Name(), err)
	}

	missing := make([]string, 0, len(unresolved))
	for path := range unresolved {
		missing = append(missing, path)
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		o.logger.Debug("unresolved placeholders", zap.Strings("paths", missing))
	}
	o.logger.Info("document generated",
		zap.String("format", format.Name()),
		zap.Int("attempts", len(outcome.Attempts)),
		zap.String("status", report.Flag()),
	)

	return Result{
		Document:    document,
		Complete:    report.Verdict.Complete,
		Diagnostics: diagnostics,
		Report:      report,
		Outcome:     outcome,
		Unresolved:  missing,
	}, nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, data docxtpl.Context) error {
	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, data); err != nil {
			return fmt.Errorf("orchestrator: transform context: %w", err)
		}
	}
	return nil
}

// BuildContext assembles the rendering context for a run. Keys:
//
//	instituicao, rubrica, projeto, objeto
//	propostas             rows of the comparison table (at least three)
//	proposta_selecionada  the selected row, empty when none
//	pendencias, avisos    rows with a single "texto" key
//	pendencias_texto, avisos_texto  the same lists joined by newlines
//	completo              "sim" or "não"
//	status                "complete" or "incomplete"
func BuildContext(meta extraction.Metadata, extra map[string]any, outcome extraction.Outcome, report status.Report) docxtpl.Context {
	data := docxtpl.Context{}
	for key, value := range extra {
		data[key] = value
	}

	rows := make([]map[string]any, len(outcome.Proposals))
	for i, p := range outcome.Proposals {
		rows[i] = p.Row()
	}
	selected := map[string]any{}
	if p, ok := proposal.Selected(outcome.Proposals); ok {
		selected = p.Row()
	}

	completo := "não"
	if report.Verdict.Complete {
		completo = "sim"
	}

	data["instituicao"] = meta.Institution
	data["rubrica"] = meta.BudgetLine
	data["projeto"] = meta.ProjectCode
	data["objeto"] = outcome.Description
	data["propostas"] = rows
	data["proposta_selecionada"] = selected
	data["pendencias"] = textRows(report.Verdict.Issues)
	data["pendencias_texto"] = strings.Join(report.Verdict.Issues, "\n")
	data["avisos"] = textRows(report.Warnings)
	data["avisos_texto"] = strings.Join(report.Warnings, "\n")
	data["completo"] = completo
	data["status"] = report.Flag()
	return data
}

func textRows(lines []string) []map[string]any {
	out := make([]map[string]any, len(lines))
	for i, line := range lines {
		out[i] = map[string]any{"texto": line}
	}
	return out
}
