// Package main hosts the songmatch CLI entrypoint and command graph.
//
// The Cobra command tree resolves free-form artist, album and track names
// to catalog identifiers, runs labelled accuracy evaluations, and exposes the
// catalog lookups the resolver is built on. Configuration, logging, the
// response cache and the catalog client are wired once in commandContext so
// subcommands only deal with flags and output.
package main
