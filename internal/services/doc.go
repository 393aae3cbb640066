// Package services defines shared utilities consumed by the import pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the film being imported and a correlation
//     identifier for logging.
//   - Structured error markers plus the Wrap helper that separate fatal import
//     failures (catalog unavailable, film write) from degraded ones.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays uniform across components.
package services
