package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/importer"
	"marquee/internal/notifications"
	"marquee/internal/store"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Restore missing person back-references for every film credit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				reconciler := importer.NewReconciler(ctx.config, st, notifications.NewService(ctx.config), ctx.ensureLogger())
				report, err := reconciler.Run(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d films (%d credits); restored %d back-references",
					report.FilmsScanned, report.CreditsChecked, report.LinksAdded)
				if report.Failures > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "; %d failed", report.Failures)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	return cmd
}
