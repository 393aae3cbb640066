// Package importer orchestrates film ingestion.
//
// ImportFilm fetches a film and its credits from the catalog, imports the
// artwork, resolves every selected credit to an internal person (creating and
// enriching people on first sight), writes the film with its embedded credits
// and then writes the back-reference on each person. The two collections are
// not updated transactionally. Back-reference writes are idempotent, so the
// Reconciler can restore any that were lost by re-running them for every
// credit.
//
// People that cannot be resolved are collected in a MissingSet, returned to
// the caller and persisted as gaps. AttachCredit adds such a credit to the
// film later.
package importer
