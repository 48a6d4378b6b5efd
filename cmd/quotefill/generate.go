package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-quotefill/internal/config"
	"github.com/goliatone/go-quotefill/pkg/extraction"
	"github.com/goliatone/go-quotefill/pkg/manualentry"
	"github.com/goliatone/go-quotefill/pkg/oracle/gemini"
	"github.com/goliatone/go-quotefill/pkg/orchestrator"
	"github.com/goliatone/go-quotefill/pkg/prompt"
)

type generateOptions struct {
	template    string
	output      string
	format      string
	sources     []string
	manualFile  string
	interactive bool
	institution string
	budgetLine  string
	project     string
	description string
	maxAttempts int
	presets     []string
	offline     bool
	timeout     time.Duration
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a comparison document from quotations",
		Example: `  quotefill generate -t mapa.docx -s cotacao1.pdf -s cotacao2.pdf -o mapa-preenchido.docx \
    --rubrica "Material de consumo" --instituicao "Fundação de Apoio"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.template, "template", "t", "", "Template (.docx package or XML part)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: <template>-preenchido<ext>)")
	flags.StringVar(&opts.format, "format", "", "Template format (docx or xml); detected when empty")
	flags.StringArrayVarP(&opts.sources, "source", "s", nil, "Quotation file; repeat for several")
	flags.StringVarP(&opts.manualFile, "manual", "m", "", "YAML or JSON file with manual proposals")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Type manual proposals in the terminal")
	flags.StringVar(&opts.institution, "instituicao", "", "Institution name")
	flags.StringVar(&opts.budgetLine, "rubrica", "", "Budget line")
	flags.StringVar(&opts.project, "projeto", "", "Project code")
	flags.StringVar(&opts.description, "objeto", "", "Object description; overrides the generated one")
	flags.IntVar(&opts.maxAttempts, "max-attempts", 0, "Extraction attempts (default from config)")
	flags.StringArrayVar(&opts.presets, "preset", nil, "JSON preset applied to the rendering context; repeat for several")
	flags.BoolVar(&opts.offline, "offline", false, "Skip extraction and render manual proposals only")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall timeout")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	template, err := os.ReadFile(opts.template)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	manual, err := a.manualEntry(ctx, opts)
	if err != nil {
		return err
	}
	sources, err := loadSources(opts.sources)
	if err != nil {
		return err
	}

	orchOpts, err := a.orchestratorOptions(ctx, opts)
	if err != nil {
		return err
	}

	result, err := orchestrator.New(orchOpts...).Generate(ctx, orchestrator.Request{
		Template: template,
		Format:   opts.format,
		Sources:  sources,
		Metadata: extraction.Metadata{
			Institution: opts.institution,
			BudgetLine:  opts.budgetLine,
			ProjectCode: opts.project,
		},
		Manual:            manual.Proposals,
		ManualDescription: manual.Description,
		MaxAttempts:       opts.maxAttempts,
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = defaultOutput(opts.template)
	}
	if err := os.WriteFile(output, result.Document, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Documento gravado em %s\n", output)
	fmt.Fprintf(out, "status: %s\n", result.Report.Flag())
	for _, issue := range result.Report.Verdict.Issues {
		fmt.Fprintf(out, "  pendência: %s\n", issue)
	}
	for _, warning := range result.Report.Warnings {
		fmt.Fprintf(out, "  aviso: %s\n", warning)
	}
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(out, "  campos sem valor: %s\n", strings.Join(result.Unresolved, ", "))
	}
	fmt.Fprintf(out, "diagnostics: %s\n", result.Diagnostics)
	return nil
}

func (a *app) manualEntry(ctx context.Context, opts *generateOptions) (manualentry.Entry, error) {
	var entry manualentry.Entry
	if opts.manualFile != "" {
		loaded, err := manualentry.Load(opts.manualFile)
		if err != nil {
			return manualentry.Entry{}, err
		}
		entry = loaded
	}
	if opts.interactive {
		typed, err := manualentry.New(manualentry.NewSurveyDriver(a.out)).Collect(ctx)
		if err != nil {
			return manualentry.Entry{}, err
		}
		entry.Proposals = append(entry.Proposals, typed.Proposals...)
		if typed.Description != "" {
			entry.Description = typed.Description
		}
	}
	if opts.description != "" {
		entry.Description = opts.description
	}
	return entry, nil
}

func (a *app) orchestratorOptions(ctx context.Context, opts *generateOptions) ([]orchestrator.Option, error) {
	cfg := a.cfg
	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMaxAttempts(cfg.Extraction.MaxAttempts),
		orchestrator.WithStrictTemplates(cfg.Templates.Strict),
	}

	if dir := strings.TrimSpace(cfg.Templates.PromptsDir); dir != "" {
		prompts, err := prompt.New(prompt.WithBaseDir(dir))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithPrompts(prompts))
	}

	presets := append(append([]string{}, cfg.Templates.Presets...), opts.presets...)
	for _, path := range presets {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewJSONPresetTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", path, err)
		}
		options = append(options, orchestrator.WithTransformers(transformer))
	}

	if opts.offline || cfg.Oracle.Provider == config.ProviderNone || len(opts.sources) == 0 {
		return options, nil
	}
	apiKey := cfg.APIKey()
	if apiKey == "" {
		a.logger.Warn("oracle API key not set, rendering manual proposals only",
			zap.String("env", cfg.Oracle.APIKeyEnv))
		return options, nil
	}
	geminiOpts := []gemini.Option{
		gemini.WithModel(cfg.Oracle.Model),
		gemini.WithTemperature(cfg.Oracle.Temperature),
		gemini.WithLogger(a.logger),
	}
	if cfg.Oracle.SystemInstruction != "" {
		geminiOpts = append(geminiOpts, gemini.WithSystemInstruction(cfg.Oracle.SystemInstruction))
	}
	oracle, err := gemini.New(ctx, apiKey, geminiOpts...)
	if err != nil {
		return nil, err
	}
	return append(options, orchestrator.WithOracle(oracle)), nil
}

func defaultOutput(template string) string {
	ext := filepath.Ext(template)
	return strings.TrimSuffix(template, ext) + "-preenchido" + ext
}
