package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	quotefill "github.com/goliatone/go-quotefill"
	"github.com/goliatone/go-quotefill/internal/config"
)

func newDecodeStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode-status [payload]",
		Short: "Print the diagnostics payload of a generate run as JSON",
		Long:  "Reads the payload from the argument, or from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := ""
			if len(args) == 1 {
				payload = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read payload: %w", err)
				}
				payload = string(data)
			}
			report, err := quotefill.DecodeStatus(strings.TrimSpace(payload))
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			return encoder.Encode(report)
		},
	}
}

func newInitConfigCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.DefaultYAML), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuração gravada em %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
