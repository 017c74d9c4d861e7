// Package main hosts the cuesynth CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the track dispatcher and the summary
// builder against the configured object store, renders local transcript
// shards, and serves the HTTP API. It centralizes configuration resolution,
// store opening, and structured logging setup so subcommands can focus on
// presentation.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
