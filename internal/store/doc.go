// Package store is the SQLite-backed document store for films, people,
// binary asset metadata and import gaps.
//
// Films and people are rows whose nested collections (credits,
// back-references, genres, professions) live in JSON columns. Appends to
// those collections are single statements that test for an existing entry
// and append in one step, so repeated or concurrent calls never duplicate
// an entry. Both collections carry a unique index on the catalog external id:
// CreateFilm reports ErrFilmExists on conflict and CreatePerson returns the
// already stored row.
//
// Pragmas (WAL, busy timeout, foreign keys) are carried in the DSN and writes
// retry briefly on SQLITE_BUSY.
package store
