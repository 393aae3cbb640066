package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const filmColumns = "id, external_id, title, slug, synopsis, release_date, runtime_minutes, rating_average, rating_count, imdb_id, trailer_url, poster_json, backdrop_json, genres_json, credits_json, created_at, updated_at"

func scanFilm(scanner rowScanner) (*Film, error) {
	var (
		film        Film
		slug        sql.NullString
		synopsis    sql.NullString
		releaseDate sql.NullString
		imdbID      sql.NullString
		trailerURL  sql.NullString
		poster      sql.NullString
		backdrop    sql.NullString
		genres      sql.NullString
		credits     sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&film.ID,
		&film.ExternalID,
		&film.Title,
		&slug,
		&synopsis,
		&releaseDate,
		&film.RuntimeMinutes,
		&film.Rating.Average,
		&film.Rating.Count,
		&imdbID,
		&trailerURL,
		&poster,
		&backdrop,
		&genres,
		&credits,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	film.Slug = slug.String
	film.Synopsis = synopsis.String
	film.ReleaseDate = releaseDate.String
	film.IMDBID = imdbID.String
	film.TrailerURL = trailerURL.String

	var err error
	if film.Poster, err = decodeRef(poster); err != nil {
		return nil, fmt.Errorf("film %s poster: %w", film.ID, err)
	}
	if film.Backdrop, err = decodeRef(backdrop); err != nil {
		return nil, fmt.Errorf("film %s backdrop: %w", film.ID, err)
	}
	if film.Genres, err = decodeList[string](genres); err != nil {
		return nil, fmt.Errorf("film %s genres: %w", film.ID, err)
	}
	if film.Credits, err = decodeList[Credit](credits); err != nil {
		return nil, fmt.Errorf("film %s credits: %w", film.ID, err)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		film.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		film.UpdatedAt = updated
	}
	return &film, nil
}

// FindFilmByExternalID returns the film imported for a catalog id, or nil.
func (s *Store) FindFilmByExternalID(ctx context.Context, externalID string) (*Film, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+filmColumns+" FROM films WHERE external_id = ?",
		strings.TrimSpace(externalID),
	)
	film, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find film by external id: %w", err)
	}
	return film, nil
}

// GetFilm returns the film with the given internal id, or nil.
func (s *Store) GetFilm(ctx context.Context, id string) (*Film, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+filmColumns+" FROM films WHERE id = ?", id)
	film, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get film: %w", err)
	}
	return film, nil
}

// ListFilms returns every film ordered by creation time.
func (s *Store) ListFilms(ctx context.Context) ([]*Film, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+filmColumns+" FROM films ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	var films []*Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}
	return films, nil
}

// CreateFilm inserts the film document with its full credit list. It does not
// hand back the stored row; callers look the film up by external id. A film
// whose external id is already stored yields ErrFilmExists.
func (s *Store) CreateFilm(ctx context.Context, film *Film) error {
	if film == nil {
		return errors.New("create film: nil film")
	}
	externalID := strings.TrimSpace(film.ExternalID)
	if externalID == "" {
		return errors.New("create film: external id required")
	}
	if strings.TrimSpace(film.Title) == "" {
		return errors.New("create film: title required")
	}
	poster, err := nullableRef(film.Poster)
	if err != nil {
		return err
	}
	backdrop, err := nullableRef(film.Backdrop)
	if err != nil {
		return err
	}
	genres, err := encodeList(film.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	credits, err := encodeList(film.Credits)
	if err != nil {
		return fmt.Errorf("encode credits: %w", err)
	}
	now := nowString()

	res, err := s.execWithRetry(ctx,
		`INSERT INTO films (
            id, external_id, title, slug, synopsis, release_date, runtime_minutes,
            rating_average, rating_count, imdb_id, trailer_url, poster_json, backdrop_json,
            genres_json, credits_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_id) DO NOTHING`,
		newID(),
		externalID,
		film.Title,
		film.Slug,
		film.Synopsis,
		film.ReleaseDate,
		film.RuntimeMinutes,
		film.Rating.Average,
		film.Rating.Count,
		film.IMDBID,
		film.TrailerURL,
		poster,
		backdrop,
		genres,
		credits,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert film: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert film rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: external id %s", ErrFilmExists, externalID)
	}
	return nil
}

// AppendFilmCredit appends credit to the film unless the film already has a
// credit for the same person and department. It reports whether a credit was
// appended.
func (s *Store) AppendFilmCredit(ctx context.Context, filmID string, credit Credit) (bool, error) {
	if strings.TrimSpace(credit.PersonID) == "" {
		return false, errors.New("append film credit: person id required")
	}
	if credit.Key == "" {
		credit.Key = newID()
	}
	encoded, err := encodeJSON(credit)
	if err != nil {
		return false, fmt.Errorf("encode credit: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE films
            SET credits_json = json_insert(credits_json, '$[#]', json(?)), updated_at = ?
          WHERE id = ?
            AND NOT EXISTS (
                SELECT 1 FROM json_each(films.credits_json)
                 WHERE json_extract(value, '$.person_id') = ?
                   AND json_extract(value, '$.department') = ?
            )`,
		encoded,
		nowString(),
		filmID,
		credit.PersonID,
		credit.Department,
	)
	if err != nil {
		return false, fmt.Errorf("append film credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append film credit rows affected: %w", err)
	}
	return affected > 0, nil
}
