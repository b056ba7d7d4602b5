// Package main hosts the orchard CLI entrypoint and command graph.
//
// The Cobra-based command tree walks a user through the pipeline stage by
// stage: ingest pulls education records out of compressed archives, clean
// normalizes them, match canonicalizes university names, links derives
// degree transitions, graph exports the network, and fields surveys the raw
// documents. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
