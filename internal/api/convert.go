package api

import (
	"encoding/json"
	"strings"
	"time"

	"dit/internal/keyer"
	"dit/internal/morse"
	"dit/internal/queue"
	"dit/internal/view"
	"dit/internal/workflow"
)

// FromJob converts a queue record to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:           job.ID,
		Text:         job.Text,
		Speed:        job.Speed,
		Status:       string(job.Status),
		Code:         job.Code,
		ErrorMessage: job.ErrorMessage,
		Retryable:    job.Retryable,
		RequestID:    job.RequestID,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
		DurationMs:   job.Duration().Milliseconds(),
	}
	if job.StartedAt != nil {
		dto.StartedAt = formatTime(*job.StartedAt)
	}
	if job.FinishedAt != nil {
		dto.FinishedAt = formatTime(*job.FinishedAt)
	}
	if raw := strings.TrimSpace(job.Ack); raw != "" {
		if json.Valid([]byte(raw)) {
			dto.Ack = json.RawMessage(raw)
		} else {
			quoted, _ := json.Marshal(raw)
			dto.Ack = quoted
		}
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		out = append(out, FromJob(job))
	}
	return out
}

// MergeQueueStats converts status-keyed counts to string keys and fills in
// zero counts for every known status.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for _, status := range queue.AllStatuses() {
		out[string(status)] = 0
	}
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FromLastEvent converts the workflow's latest event to its wire shape.
func FromLastEvent(evt workflow.LastEvent) LastEvent {
	state := evt.State
	if state == "" {
		state = workflow.StateIdle
	}
	dto := LastEvent{State: state}
	if state == workflow.StateIdle {
		return dto
	}
	dto.ID = evt.JobID
	dto.Txt = evt.Text
	dto.Speed = evt.Speed
	dto.Detail = evt.Detail
	dto.At = formatTime(evt.At)
	n := evt.QueueLen
	dto.QueueLen = &n
	if evt.Ack != nil {
		dto.Ack = marshalAck(*evt.Ack)
	}
	return dto
}

// FromStatusSummary builds the /status payload.
func FromStatusSummary(summary workflow.StatusSummary) StatusResponse {
	return StatusResponse{
		OK:          true,
		Busy:        summary.Busy,
		QueueLen:    summary.QueueLen,
		Last:        FromLastEvent(summary.Last),
		Speed:       summary.Speed,
		Transmitter: summary.Transmitter,
		LastError:   summary.LastError,
	}
}

// FromSubmission builds the /morse acceptance payload.
func FromSubmission(sub workflow.Submission) MorseResponse {
	resp := MorseResponse{
		OK:       true,
		Accepted: true,
		Txt:      sub.Text,
		Len:      sub.Runes,
		Speed:    sub.Speed,
	}
	if sub.Job != nil {
		resp.ID = sub.Job.ID
	}
	return resp
}

// FromTranscription builds the /render payload for text.
func FromTranscription(text string, t morse.Transcription) RenderResponse {
	encoded, spaces, unsupported := t.Counts()
	return RenderResponse{
		OK:     true,
		Text:   text,
		Code:   keyer.CodeOf(t),
		Rows:   view.Fragments(t),
		Counts: RenderCounts{Encoded: encoded, Spaces: spaces, Unsupported: unsupported},
	}
}

func marshalAck(ack keyer.Ack) json.RawMessage {
	raw, err := json.Marshal(ack)
	if err != nil {
		return nil
	}
	return raw
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
