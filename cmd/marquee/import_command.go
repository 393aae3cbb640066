package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/importer"
	"marquee/internal/store"
)

type importOutcome struct {
	ExternalID string           `json:"external_id"`
	Result     *importer.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var listPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import [film-id...]",
		Short: "Import films by catalog id",
		Long: "Import films by catalog id. Films that are already cataloged are acknowledged " +
			"without contacting the catalog. People who cannot be resolved are listed for follow-up " +
			"with `marquee attach`.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := append([]string(nil), args...)
			if strings.TrimSpace(listPath) != "" {
				fromFile, err := readIDList(listPath)
				if err != nil {
					return err
				}
				ids = append(ids, fromFile...)
			}
			ids = uniqueIDs(ids)
			if len(ids) == 0 {
				return errors.New("no film ids given")
			}

			return ctx.withImporter(func(imp *importer.Importer, _ *store.Store) error {
				outcomes := make([]importOutcome, 0, len(ids))
				var firstErr error
				failed := 0
				for _, id := range ids {
					result, err := imp.ImportFilm(cmd.Context(), id)
					outcome := importOutcome{ExternalID: id, Result: result}
					if err != nil {
						failed++
						if firstErr == nil {
							firstErr = err
						}
						outcome.Error = err.Error()
					}
					outcomes = append(outcomes, outcome)
					if cmd.Context().Err() != nil {
						break
					}
				}

				if jsonOutput {
					if err := writeJSON(cmd, outcomes); err != nil {
						return err
					}
				} else {
					printImportOutcomes(cmd, outcomes)
				}
				if failed > 0 && len(ids) == 1 {
					return firstErr
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d imports failed", failed, len(ids))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&listPath, "file", "f", "", "Read film ids from a file, one per line")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func printImportOutcomes(cmd *cobra.Command, outcomes []importOutcome) {
	out := cmd.OutOrStdout()
	if len(outcomes) == 1 && outcomes[0].Result != nil && outcomes[0].Result.AlreadyExists {
		result := outcomes[0].Result
		fmt.Fprintf(out, "%s already imported: %s (%s)\n", outcomes[0].ExternalID, result.Title, result.FilmID)
		return
	}

	rows := make([][]string, 0, len(outcomes))
	var missing []string
	for _, outcome := range outcomes {
		if outcome.Result == nil {
			rows = append(rows, []string{outcome.ExternalID, "-", "failed", "-", "-", outcome.Error})
			continue
		}
		result := outcome.Result
		status := "imported"
		if result.AlreadyExists {
			status = "already imported"
		}
		rows = append(rows, []string{
			outcome.ExternalID,
			result.Title,
			status,
			strconv.Itoa(result.Credits),
			strconv.Itoa(len(result.MissingPersonIDs)),
			result.FilmID,
		})
		for _, id := range result.MissingPersonIDs {
			missing = append(missing, fmt.Sprintf("%s:%s", outcome.ExternalID, id))
		}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Film", "Title", "Status", "Credits", "Missing", "Film ID / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	if len(missing) > 0 {
		fmt.Fprintf(out, "Needs follow-up (film:person): %s\n", strings.Join(missing, ", "))
	}
}

func readIDList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open id list: %w", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read id list: %w", err)
	}
	return ids, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
