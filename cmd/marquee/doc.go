// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the importer, the
// people resolver and the catalog store: importing films by catalog id,
// attaching credits that were missing at import time, repairing person
// back-references, and inspecting films, people and recorded gaps. It
// centralizes configuration resolution, store lifetime and logger setup so
// subcommands only describe their own arguments and output.
package main
