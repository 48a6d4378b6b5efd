package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	quotefill "github.com/goliatone/go-quotefill"
	"github.com/goliatone/go-quotefill/pkg/docxtpl"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "normalize <template>",
		Short: "Repair placeholders split by Word and write the template back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			normalized, err := quotefill.NormalizeTemplate(raw)
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				target = args[0]
			}
			if err := os.WriteFile(target, normalized, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Modelo normalizado gravado em %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: overwrite the template)")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template>",
		Short: "List placeholders and report structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			reports, err := quotefill.InspectTemplate(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, report := range reports {
				fmt.Fprintf(out, "%s: %s\n", report.Name, strings.Join(report.Keys, ", "))
				var syntaxErr *docxtpl.SyntaxError
				if errors.As(report.Err, &syntaxErr) {
					failed++
					for _, issue := range syntaxErr.Issues {
						fmt.Fprintf(out, "  %s\n", issue)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d part(s) with template problems", failed)
			}
			return nil
		},
	}
}
