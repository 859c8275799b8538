// Package main hosts the mfasrt CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline
// runs (align an existing aligner JSON, or run the aligner first), CSV
// exports, run history listings, environment checks and configuration
// scaffolding. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on presenting results.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
