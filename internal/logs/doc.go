// Package logs reads ditd.log directly from disk. "dit logs --file" uses it
// when the daemon is not running, so the last run's output stays reachable
// without the HTTP log stream.
package logs
