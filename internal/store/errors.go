package store

import "errors"

// ErrFilmExists is returned by CreateFilm when a film with the same external id
// is already stored.
var ErrFilmExists = errors.New("film already exists")

// ErrPersonNotFound is returned when a write targets a person id that has no
// row.
var ErrPersonNotFound = errors.New("person not found")
