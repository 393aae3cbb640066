package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marquee/internal/services"
	"marquee/internal/store"
)

// ErrFilmNotFound is returned when an operation targets a film that is not
// cataloged.
var ErrFilmNotFound = errors.New("film not found")

// Linker writes person-to-film back-references.
type Linker struct {
	store *store.Store
}

// NewLinker constructs a Linker over st.
func NewLinker(st *store.Store) *Linker {
	return &Linker{store: st}
}

// LinkPersonToFilm appends a back-reference to filmID on the person unless
// one already exists. It reports whether an entry was appended; calling it
// repeatedly with the same arguments leaves exactly one entry.
func (l *Linker) LinkPersonToFilm(ctx context.Context, personID, filmID, role, department string) (bool, error) {
	film, err := l.store.GetFilm(ctx, filmID)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "linker", "load film", "load film for back-reference", err)
	}
	if film == nil {
		return false, fmt.Errorf("%w: %s", ErrFilmNotFound, filmID)
	}
	return l.link(ctx, personID, film, role, department)
}

func (l *Linker) link(ctx context.Context, personID string, film *store.Film, role, department string) (bool, error) {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return false, services.Wrap(services.ErrValidation, "linker", "link", "person id required", nil)
	}
	added, err := l.store.AppendPersonCredit(ctx, personID, store.PersonCredit{
		FilmID:         film.ID,
		FilmExternalID: film.ExternalID,
		FilmTitle:      film.Title,
		Role:           role,
		Department:     department,
	})
	if errors.Is(err, store.ErrPersonNotFound) {
		return false, services.Wrap(services.ErrNotFound, "linker", "link", "person missing for back-reference", err)
	}
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "linker", "link", "append back-reference", err)
	}
	return added, nil
}
