// Command quotefill fills procurement comparison templates from quotation
// files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-quotefill/internal/config"
	"github.com/goliatone/go-quotefill/internal/logging"
)

// app holds state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "quotefill",
		Short: "Fill procurement comparison documents from quotations",
		Long: `quotefill reads supplier quotations, extracts the offers with an LLM,
merges them with manually entered proposals and renders a .docx comparison
template.

Templates use {{campo}} placeholders and {{#propostas}}...{{/propostas}}
regions. Placeholders split across Word runs are repaired before rendering.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (default: ./"+config.FileName+" when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newGenerateCmd(a),
		newNormalizeCmd(a),
		newValidateCmd(a),
		newDecodeStatusCmd(a),
		newInitConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
