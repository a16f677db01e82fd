package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pixelpress/internal/batch"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process unoptimized assets in chunks until done",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				caps := a.Probe.Detect(runCtx)
				if !caps.AnyFormatAvailable(a.Cfg.TargetFormats()) {
					return fmt.Errorf("no conversion backend can produce the configured formats; run 'pixelpress capabilities' for details")
				}

				out := cmd.OutOrStdout()
				for {
					report, err := a.Processor.RunChunk(runCtx)
					if err != nil {
						return err
					}
					printChunkReport(out, report)

					if report.Locked {
						fmt.Fprintln(out, "Another pixelpress run is in progress; try again later.")
						return nil
					}
					if report.Done || once {
						return nil
					}
					if report.Guard != batch.GuardNone {
						fmt.Fprintf(out, "Stopped early by %s guard; %d assets remaining. Re-run to continue.\n",
							report.Guard, report.Remaining)
						return nil
					}
					if runCtx.Err() != nil {
						return runCtx.Err()
					}
				}
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Process a single chunk and exit")
	return cmd
}

func printChunkReport(out io.Writer, report *batch.Report) {
	for _, outcome := range report.Results {
		line := fmt.Sprintf("asset %d: %s", outcome.AssetID, outcome.Status)
		if outcome.SavingsBytes > 0 {
			line += fmt.Sprintf(" (saved %s)", formatBytes(outcome.SavingsBytes))
		}
		if outcome.Deleted {
			line += " [originals deleted]"
		}
		if outcome.Error != "" {
			line += fmt.Sprintf(" (%s)", outcome.Error)
		}
		fmt.Fprintln(out, line)
	}
	if report.Done {
		fmt.Fprintf(out, "All assets processed (%d total).\n", report.ProcessedTotal)
	}
}
