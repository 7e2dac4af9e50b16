package api

import (
	"encoding/json"

	"dit/internal/logging"
	"dit/internal/view"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Error codes returned in ErrorResponse.Error.
const (
	ErrCodeEmpty        = "empty"
	ErrCodeTooLong      = "too_long"
	ErrCodeBadSpeed     = "bad_speed"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeNotFound     = "not_found"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeInternal     = "internal"
)

// OKResponse is the bare acknowledgement returned by /ping.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse reports a rejected request.
type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// LastEvent describes the latest transmission event.
type LastEvent struct {
	State    string          `json:"state"`
	ID       int64           `json:"id,omitempty"`
	Txt      string          `json:"txt,omitempty"`
	Speed    int             `json:"speed,omitempty"`
	QueueLen *int            `json:"queue_len,omitempty"`
	Ack      json.RawMessage `json:"ack,omitempty"`
	Detail   string          `json:"detail,omitempty"`
	At       string          `json:"at,omitempty"`
}

// StatusResponse is returned by /status.
type StatusResponse struct {
	OK          bool      `json:"ok"`
	Busy        bool      `json:"busy"`
	QueueLen    int       `json:"queue_len"`
	Last        LastEvent `json:"last"`
	Speed       int       `json:"speed"`
	Transmitter string    `json:"transmitter,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// SpeedResponse is returned by /speed. Min, Max and MaxTextLength echo the
// keyer limits so the web UI can size its controls.
type SpeedResponse struct {
	OK            bool `json:"ok"`
	Speed         int  `json:"speed"`
	Min           int  `json:"min"`
	Max           int  `json:"max"`
	MaxTextLength int  `json:"max_text_length"`
}

// MorseResponse is returned by /morse once a job is accepted.
type MorseResponse struct {
	OK       bool   `json:"ok"`
	Accepted bool   `json:"accepted"`
	Txt      string `json:"txt"`
	Len      int    `json:"len"`
	Speed    int    `json:"speed"`
	ID       int64  `json:"id,omitempty"`
}

// RenderCounts summarizes a rendering by character class.
type RenderCounts struct {
	Encoded     int `json:"encoded"`
	Spaces      int `json:"spaces"`
	Unsupported int `json:"unsupported"`
}

// RenderResponse is returned by /render.
type RenderResponse struct {
	OK     bool            `json:"ok"`
	Text   string          `json:"text"`
	Code   string          `json:"code"`
	Rows   []view.Fragment `json:"rows"`
	Counts RenderCounts    `json:"counts"`
}

// Job describes a queued transmission in a transport-friendly format.
type Job struct {
	ID           int64           `json:"id"`
	Text         string          `json:"text"`
	Speed        int             `json:"speed"`
	Status       string          `json:"status"`
	Code         string          `json:"code,omitempty"`
	Ack          json.RawMessage `json:"ack,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Retryable    bool            `json:"retryable"`
	RequestID    string          `json:"requestId,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
	StartedAt    string          `json:"startedAt,omitempty"`
	FinishedAt   string          `json:"finishedAt,omitempty"`
	DurationMs   int64           `json:"durationMs,omitempty"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// LogStreamResponse carries a batch of log events and the cursor for the next fetch.
type LogStreamResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Address      string         `json:"address"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	LogPath      string         `json:"logPath"`
	Keyer        StatusResponse `json:"keyer"`
	QueueStats   map[string]int `json:"queueStats"`
}
