package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/store"
)

type gapView struct {
	FilmExternalID   string `json:"film_external_id"`
	PersonExternalID string `json:"person_external_id"`
	Name             string `json:"name"`
	Department       string `json:"department"`
	Role             string `json:"role"`
	RecordedAt       string `json:"recorded_at"`
}

func newGapsCommand(ctx *commandContext) *cobra.Command {
	var filmID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "List credited people that could not be resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				gaps, err := st.ListGaps(cmd.Context(), filmID)
				if err != nil {
					return err
				}
				views := make([]gapView, 0, len(gaps))
				for _, gap := range gaps {
					views = append(views, gapView{
						FilmExternalID:   gap.FilmExternalID,
						PersonExternalID: gap.PersonExternalID,
						Name:             gap.Name,
						Department:       gap.Department,
						Role:             gap.Role,
						RecordedAt:       gap.RecordedAt.UTC().Format("2006-01-02 15:04"),
					})
				}
				if jsonOutput {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No gaps recorded")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.FilmExternalID, v.PersonExternalID, dash(v.Name), dash(v.Department), dash(v.Role), v.RecordedAt})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Film", "Person", "Name", "Department", "Role", "Recorded"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filmID, "film", "", "Only show gaps for this film catalog id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output gaps as JSON")
	return cmd
}
