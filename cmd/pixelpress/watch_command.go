package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pixelpress/internal/batch"
)

// newWatchCommand runs chunks on a fixed interval, the in-process
// equivalent of an external scheduler calling runChunk periodically.
func newWatchCommand(ctx *commandContext) *cobra.Command {
	var intervalSeconds int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run chunks on an interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				interval := time.Duration(intervalSeconds) * time.Second
				if intervalSeconds <= 0 {
					interval = time.Duration(a.Cfg.Batch.WatchIntervalSeconds) * time.Second
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Watching catalog, chunk every %s. Ctrl-C to stop.\n", interval)

				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					report, err := a.Processor.RunChunk(runCtx)
					if err != nil {
						return err
					}
					printChunkReport(out, report)
					if report.Guard == batch.GuardMemory {
						fmt.Fprintln(out, "Memory guard tripped; waiting for the next interval.")
					}

					select {
					case <-runCtx.Done():
						return nil
					case <-ticker.C:
					}
				}
			})
		},
	}

	cmd.Flags().IntVar(&intervalSeconds, "interval", 0, "Seconds between chunks (default from config)")
	return cmd
}
