// Package main hosts the dit CLI entrypoint and command graph.
//
// The Cobra-based command tree covers local encoding (no daemon needed),
// HTTP calls against a running ditd, direct queue maintenance on the job
// database, preflight diagnostics, and configuration scaffolding. It
// centralizes configuration resolution and daemon address discovery so
// subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
