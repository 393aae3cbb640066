// Package notifications delivers import events to operators via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when no topic is set. Individual event
// families (imports, unresolved people, errors) can be switched off in the
// notifications section. Unresolved people are the main consumer of this
// package: they need manual follow-up that the pipeline itself never takes.
package notifications
