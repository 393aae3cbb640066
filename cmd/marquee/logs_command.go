package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filmID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the marquee log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogPath()
			filter := logs.Filter{FilmExternalID: filmID}

			result, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(result.Lines) == 0 && lines > 0 {
					fmt.Fprintf(out, "No log entries in %s\n", path)
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, 250*time.Millisecond, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&filmID, "film", "", "Only show lines for this film catalog id")
	return cmd
}
