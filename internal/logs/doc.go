// Package logs reads back the marquee.log file written by the logging package.
//
// It returns the last N lines with bounded memory, optionally narrowed to a
// single film's import, and follows the file for new lines until the caller's
// context is cancelled. `marquee logs` is the only consumer.
package logs
