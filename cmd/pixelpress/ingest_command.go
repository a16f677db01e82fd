package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Scan the library directory and register image files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				summary, err := a.Scanner.Scan(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Registered %d asset(s) and %d variant(s); %d already cataloged.\n",
					summary.Assets, summary.Variants, summary.Skipped)

				total, err := a.Store.CountAll(cmd.Context())
				if err != nil {
					return err
				}
				processed, err := a.Store.CountProcessed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Catalog holds %d asset(s), %d processed.\n", total, processed)
				return nil
			})
		},
	}
}
