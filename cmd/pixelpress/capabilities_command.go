package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelpress/internal/capability"
	"pixelpress/internal/codec"
	"pixelpress/internal/config"
)

func newCapabilitiesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show codec backend support and host checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				caps := a.Probe.Detect(cmd.Context())
				out := cmd.OutOrStdout()

				rows := [][]string{
					{codec.FFmpegName, yesNo(caps.FFmpeg.WebP), yesNo(caps.FFmpeg.AVIF), caps.FFmpegDetail},
					{codec.NativeName, yesNo(caps.Native.WebP), yesNo(caps.Native.AVIF), "built in"},
					{"available", yesNo(caps.FormatAvailable(config.FormatWebP)), yesNo(caps.FormatAvailable(config.FormatAVIF)), ""},
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Backend", "WebP", "AVIF", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))

				fmt.Fprintf(out, "Memory ceiling: %d MB\n", caps.MemoryLimitMB)
				fmt.Fprintf(out, "Run ceiling: %d s\n", caps.MaxRunSeconds)

				for _, check := range capability.RunChecks(a.Cfg) {
					status := "ok"
					if !check.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(out, "%-18s %s: %s\n", check.Name, status, check.Detail)
				}
				return nil
			})
		},
	}
}
