package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelpress/internal/assets"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog-wide optimization progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				summary, err := a.Processor.Status(cmd.Context())
				if err != nil {
					return err
				}

				breakdown, err := a.Store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				skipped := 0
				for status, count := range breakdown {
					if status.IsSkip() {
						skipped += count
					}
				}

				rows := [][]string{
					{"Total assets", fmt.Sprintf("%d", summary.Total)},
					{"Processed", fmt.Sprintf("%d", summary.Processed)},
					{"Succeeded", fmt.Sprintf("%d", summary.Succeeded)},
					{"Skipped", fmt.Sprintf("%d", skipped)},
					{"Remaining", fmt.Sprintf("%d", summary.Remaining)},
					{"Bytes saved", formatBytes(summary.SavingsBytes)},
					{"Average reduction", fmt.Sprintf("%.1f%%", summary.AvgPercent)},
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))

				statusRows := make([][]string, 0, len(breakdown))
				for _, status := range assets.AllStatuses() {
					if count := breakdown[status]; count > 0 {
						statusRows = append(statusRows, []string{string(status), fmt.Sprintf("%d", count)})
					}
				}
				if len(statusRows) > 0 {
					fmt.Fprintln(out, renderTable(
						[]string{"Status", "Assets"},
						statusRows,
						[]columnAlignment{alignLeft, alignRight},
					))
				}
				return nil
			})
		},
	}
}
