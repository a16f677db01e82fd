package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <asset-id>",
		Short: "Convert a single asset now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				result, err := a.Processor.OptimizeSingle(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Status: %s\n", result.Status)
				fmt.Fprintf(out, "Formats requested: %s\n", strings.Join(result.FormatsRequested, ", "))
				if len(result.FormatsGenerated) > 0 {
					fmt.Fprintf(out, "Formats generated: %s\n", strings.Join(result.FormatsGenerated, ", "))
				}
				fmt.Fprintf(out, "Original size: %s\n", formatBytes(result.OriginalSize))
				fmt.Fprintf(out, "Saved: %s (%.1f%%)\n", formatBytes(result.Savings), result.SavingsPercent())
				fmt.Fprintf(out, "All formats ok: %s\n", yesNo(result.AllOK))
				for _, errText := range result.Errors {
					fmt.Fprintf(out, "Error: %s\n", errText)
				}
				return nil
			})
		},
	}
}
