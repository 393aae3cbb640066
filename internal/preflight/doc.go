// Package preflight provides readiness checks for the external services and
// filesystem paths marquee depends on.
//
// The CLI "marquee check" command runs RunAll and renders the results. Each
// check is independent and reports a human-readable detail rather than an
// error, so one failing dependency does not hide the state of the others.
package preflight
