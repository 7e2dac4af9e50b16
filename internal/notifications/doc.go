// Package notifications delivers transmission events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and degrades to a no-op when no topic is set. Per-category toggles in the
// [notifications] section suppress transmission or error messages.
package notifications
