// Package workflow drives queued transmission jobs through the keyer.
//
// The Manager accepts submissions from the HTTP surface, persists them as
// queued jobs, and runs a single lane that claims the oldest job, transmits
// its Morse line with a heartbeat running, and records the outcome as done or
// failed. Only one job is ever in flight. The manager also tracks the most
// recent event ("last") and the busy flag reported by /status, owns the
// persisted global speed, and sends completion and failure notifications.
//
// Stale sending jobs whose heartbeat expired are requeued on every loop, and
// any job left sending by a previous process is reset when the lane starts.
package workflow
