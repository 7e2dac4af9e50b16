// Package queue persists transmission jobs and daemon settings in SQLite and
// exposes helpers for driving job lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stuck-job recovery, and the queued -> sending ->
// done/failed transitions the workflow manager performs. A small settings
// table carries the global keyer speed so it survives daemon restarts.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
