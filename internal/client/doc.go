// Package client talks to a running ditd over HTTP.
//
// Responses are kept as raw JSON so the CLI can print exactly what the daemon
// returned; Response offers gjson lookups for the few fields commands branch
// on and tidwall/pretty formatting for display.
package client
