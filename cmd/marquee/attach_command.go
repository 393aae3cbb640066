package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/importer"
	"marquee/internal/store"
)

func newAttachCommand(ctx *commandContext) *cobra.Command {
	var req importer.AttachRequest
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "attach <film-id> <person-id>",
		Short: "Attach a credit to an already imported film",
		Long: "Resolve a person by catalog id and add their credit to an imported film. " +
			"Without --department every gap recorded for the person on that film is attached; " +
			"name and role default to the recorded gap.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.FilmExternalID = args[0]
			req.PersonExternalID = args[1]
			return ctx.withImporter(func(imp *importer.Importer, _ *store.Store) error {
				result, err := imp.AttachCredit(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Person %s attached to film %s\n", result.PersonID, result.FilmID)
				fmt.Fprintf(out, "  back-reference: %s\n", yesNo(result.Linked))
				rows := make([][]string, 0, len(result.Credits))
				for _, credit := range result.Credits {
					rows = append(rows, []string{credit.Department, dash(credit.Role), yesNo(credit.Added), yesNo(credit.GapCleared)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Department", "Role", "Credit Added", "Gap Cleared"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Person name (defaults to the recorded gap)")
	cmd.Flags().StringVar(&req.Department, "department", "", "Attach only this department, e.g. Acting or Directing")
	cmd.Flags().StringVar(&req.Role, "role", "", "Character or job")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}
