// Package tmdb provides the catalog metadata client used by film imports.
//
// Fetcher is the resilient transport: every attempt runs under its own
// timeout and a failed attempt (network error, timeout, non-2xx status,
// undecodable body) is retried immediately up to the configured count.
// Exhausting retries yields an error marked with services.ErrCatalogUnavailable,
// which the importer treats as fatal. An optional token bucket paces requests.
//
// Client layers the two catalog operations the importer needs on top:
// movie details with the embedded video list, and movie credits. Person
// details are never fetched from the catalog.
package tmdb
