// Package preflight provides readiness checks for the filesystem paths,
// listen address, and push endpoint that dit depends on.
//
// These checks run in two contexts:
//   - ditd calls RunAll at startup and logs every failed check as a warning.
//   - The CLI "dit doctor" command prints every result with OK/ERROR lines.
//
// The ntfy check is gated by its config toggle; with no topic it is skipped.
package preflight
