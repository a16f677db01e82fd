package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage the quarantine mirror of original files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newBackupExpireCommand(ctx))
	return cmd
}

func newBackupExpireCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Delete mirrored copies older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				retention := days
				if retention <= 0 {
					retention = a.Cfg.Batch.BackupRetentionDays
				}
				removed, err := a.Backups.Expire(retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d backup file(s) older than %d day(s).\n", removed, retention)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default from config)")
	return cmd
}
