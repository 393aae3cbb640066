package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/importer"
	"marquee/internal/people"
	"marquee/internal/store"
)

func newFilmCommand(ctx *commandContext) *cobra.Command {
	filmCmd := &cobra.Command{
		Use:   "film",
		Short: "Inspect cataloged films",
	}
	filmCmd.AddCommand(newFilmShowCommand(ctx))
	filmCmd.AddCommand(newFilmListCommand(ctx))
	return filmCmd
}

func newFilmShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <film-id>",
		Short: "Show a film by catalog id or internal id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				film, err := lookupFilm(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, film)
				}
				renderFilm(cmd.OutOrStdout(), film)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output film as JSON")
	return cmd
}

func newFilmListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged films",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				films, err := st.ListFilms(cmd.Context())
				if err != nil {
					return err
				}
				if len(films) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No films cataloged")
					return nil
				}
				rows := make([][]string, 0, len(films))
				for _, film := range films {
					rows = append(rows, []string{film.ExternalID, film.Title, dash(film.ReleaseDate), strconv.Itoa(len(film.Credits)), film.ID})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Film", "Title", "Released", "Credits", "ID"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func lookupFilm(ctx context.Context, st *store.Store, id string) (*store.Film, error) {
	id = strings.TrimSpace(id)
	film, err := st.FindFilmByExternalID(ctx, id)
	if err != nil {
		return nil, err
	}
	if film == nil {
		if film, err = st.GetFilm(ctx, id); err != nil {
			return nil, err
		}
	}
	if film == nil {
		return nil, fmt.Errorf("%w: %s", importer.ErrFilmNotFound, id)
	}
	return film, nil
}

func renderFilm(out io.Writer, film *store.Film) {
	fmt.Fprintf(out, "%s (%s)\n", film.Title, dash(film.ReleaseDate))
	fmt.Fprintf(out, "  id:       %s\n", film.ID)
	fmt.Fprintf(out, "  catalog:  %s\n", film.ExternalID)
	fmt.Fprintf(out, "  imdb:     %s\n", dash(film.IMDBID))
	fmt.Fprintf(out, "  runtime:  %d min\n", film.RuntimeMinutes)
	fmt.Fprintf(out, "  rating:   %.1f (%d votes)\n", film.Rating.Average, film.Rating.Count)
	fmt.Fprintf(out, "  genres:   %s\n", dash(strings.Join(film.Genres, ", ")))
	fmt.Fprintf(out, "  trailer:  %s\n", dash(film.TrailerURL))
	fmt.Fprintf(out, "  poster:   %s\n", yesNo(film.Poster != nil))
	fmt.Fprintf(out, "  backdrop: %s\n", yesNo(film.Backdrop != nil))
	if len(film.Credits) == 0 {
		fmt.Fprintln(out, "  no credits")
		return
	}
	rows := make([][]string, 0, len(film.Credits))
	for _, credit := range film.Credits {
		rows = append(rows, []string{dash(credit.Name), credit.Department, dash(credit.Role), credit.PersonExternalID})
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Department", "Role", "Person"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
}

func newPersonCommand(ctx *commandContext) *cobra.Command {
	personCmd := &cobra.Command{
		Use:   "person",
		Short: "Inspect and refresh people",
	}
	personCmd.AddCommand(newPersonShowCommand(ctx))
	personCmd.AddCommand(newPersonRefreshCommand(ctx))
	return personCmd
}

func newPersonShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show a person by catalog id or internal id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				person, err := lookupPerson(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, person)
				}
				renderPerson(cmd.OutOrStdout(), person)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output person as JSON")
	return cmd
}

func newPersonRefreshCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "refresh <person-id>",
		Short: "Re-enrich a person's attributes; an existing biography is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				person, err := lookupPerson(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				resolver := importer.NewResolver(ctx.config, st, nil, ctx.ensureLogger())
				refreshed, err := resolver.Refresh(cmd.Context(), person.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, refreshed)
				}
				renderPerson(cmd.OutOrStdout(), refreshed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output person as JSON")
	return cmd
}

func lookupPerson(ctx context.Context, st *store.Store, id string) (*store.Person, error) {
	id = strings.TrimSpace(id)
	person, err := st.FindPersonByExternalID(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		if person, err = st.GetPerson(ctx, id); err != nil {
			return nil, err
		}
	}
	if person == nil {
		return nil, fmt.Errorf("%w: %s", people.ErrPersonNotFound, id)
	}
	return person, nil
}

func renderPerson(out io.Writer, person *store.Person) {
	fmt.Fprintf(out, "%s\n", person.Name)
	fmt.Fprintf(out, "  id:          %s\n", person.ID)
	fmt.Fprintf(out, "  catalog:     %s\n", person.ExternalID)
	fmt.Fprintf(out, "  gender:      %s\n", dash(person.Gender))
	fmt.Fprintf(out, "  born:        %s\n", dash(person.DateOfBirth))
	if person.Deceased {
		fmt.Fprintf(out, "  died:        %s\n", dash(person.DateOfDeath))
	}
	fmt.Fprintf(out, "  country:     %s\n", dash(person.Country))
	fmt.Fprintf(out, "  professions: %s\n", dash(strings.Join(person.Professions, ", ")))
	fmt.Fprintf(out, "  height:      %s\n", dash(person.Height))
	fmt.Fprintf(out, "  biography:   %s\n", yesNo(strings.TrimSpace(person.Biography) != ""))
	if len(person.Credits) == 0 {
		fmt.Fprintln(out, "  no film credits")
		return
	}
	rows := make([][]string, 0, len(person.Credits))
	for _, credit := range person.Credits {
		rows = append(rows, []string{credit.FilmTitle, credit.Department, dash(credit.Role), credit.FilmExternalID})
	}
	fmt.Fprintln(out, renderTable([]string{"Film", "Department", "Role", "Catalog"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
}
