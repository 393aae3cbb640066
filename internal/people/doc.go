// Package people resolves catalog person ids to internal person records.
//
// Resolve looks a person up by external id and returns immediately when
// found. On a miss the person is enriched, their profile image imported, and
// the record created; creation is idempotent on the external id so a
// concurrent import of the same person yields the same record. Failures are
// reported to the caller's missing set instead of being returned.
//
// Refresh is the patch path for existing people.
package people
