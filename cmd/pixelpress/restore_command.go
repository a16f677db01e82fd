package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <asset-id>",
		Short: "Restore an asset's originals from backup and drop its derivatives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				restored, err := a.Processor.RestoreSingle(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !restored {
					return fmt.Errorf("asset %d has no backup of its main file; nothing restored", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Asset %d restored; it will be reconsidered on the next run.\n", id)
				return nil
			})
		},
	}
}
