// Package api defines wire-format types and converters for the daemon's HTTP
// surface. It translates internal queue, workflow, and renderer models into
// transport-friendly DTOs that the CLI and the web UI can consume without
// coupling to internal types.
//
// # Key Types
//
// StatusResponse, MorseResponse, SpeedResponse, ErrorResponse: the keyer
// endpoints. These keep short snake_case keys ("queue_len", "txt") because
// scripts and the web UI read them directly.
//
// Job, JobListResponse, JobResponse, QueueStatsResponse: queue listings served
// under /api/queue. These use camelCase JSON tags like the rest of /api.
//
// RenderResponse: the server-side rendering of a text, one fragment per
// character.
//
// LogStreamResponse: structured log events for live tailing.
//
// # Converters
//
// FromJob: queue.Job -> Job, with the stored ack passed through as raw JSON.
//
// FromLastEvent / FromStatusSummary: workflow state -> /status payload.
//
// FromTranscription: morse.Transcription -> RenderResponse.
package api
