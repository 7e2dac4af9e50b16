// Package daemon coordinates the long-running ditd process.
//
// It wires configuration, queue storage, the workflow manager, and the HTTP
// surface into a single lifecycle with flock-based locking to prevent multiple
// instances. The HTTP server exposes the keyer endpoints (/ping, /status,
// /speed, /morse, /render), the queue and log APIs under /api, and the
// embedded web UI.
//
// Keep orchestration logic here: transmission steps live in workflow and
// keyer while the daemon focuses on startup, shutdown, and request handling.
package daemon
