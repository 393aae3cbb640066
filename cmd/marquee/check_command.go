package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/notifications"
	"marquee/internal/preflight"
	"marquee/internal/store"
)

var errCheckFailed = errors.New("one or more checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, the catalog store, the catalog API and the generative service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				results := preflight.RunAll(cmd.Context(), ctx.config, st)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAILED"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
				if preflight.Failed(results) {
					return errCheckFailed
				}
				return nil
			})
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.config.Notifications.NtfyTopic == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications not configured (notifications.ntfy_topic is empty)")
				return nil
			}
			if err := notifications.NewService(ctx.config).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
