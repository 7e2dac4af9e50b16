package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dit/internal/keyer"
	"dit/internal/morse"
	"dit/internal/queue"
	"dit/internal/workflow"
)

func TestFromJob(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)
	job := &queue.Job{
		ID:         7,
		Text:       "SOS",
		Speed:      20,
		Status:     queue.StatusDone,
		Code:       "... --- ...",
		Ack:        `{"ok":true,"code":"... --- ...","speed":20}`,
		Retryable:  true,
		CreatedAt:  started,
		UpdatedAt:  finished,
		StartedAt:  &started,
		FinishedAt: &finished,
	}

	dto := FromJob(job)
	if dto.ID != 7 || dto.Status != "done" || dto.Code != "... --- ..." {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.CreatedAt != "2026-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected createdAt: %q", dto.CreatedAt)
	}
	if dto.DurationMs != 1500 {
		t.Fatalf("unexpected duration: %d", dto.DurationMs)
	}

	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"ack":{"ok":true`) {
		t.Fatalf("ack should be embedded as JSON: %s", data)
	}
	if strings.Contains(string(data), `"errorMessage"`) {
		t.Fatalf("empty error message should be omitted: %s", data)
	}
}

func TestFromJobQuotesPlainAck(t *testing.T) {
	dto := FromJob(&queue.Job{ID: 1, Ack: "sent"})
	if string(dto.Ack) != `"sent"` {
		t.Fatalf("expected quoted ack, got %s", dto.Ack)
	}
}

func TestFromJobsSkipsNil(t *testing.T) {
	got := FromJobs([]*queue.Job{nil, {ID: 2}})
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected jobs: %+v", got)
	}
	if got := FromJobs(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMergeQueueStatsFillsZeros(t *testing.T) {
	got := MergeQueueStats(map[queue.Status]int{queue.StatusDone: 3})
	want := map[string]int{"queued": 0, "sending": 0, "done": 3, "failed": 0}
	if len(got) != len(want) {
		t.Fatalf("unexpected stats: %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("stats[%s] = %d, want %d", k, got[k], v)
		}
	}
}

func TestFromLastEventIdle(t *testing.T) {
	data, err := json.Marshal(FromLastEvent(workflow.LastEvent{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"state":"idle"}` {
		t.Fatalf("unexpected idle payload: %s", data)
	}
}

func TestFromLastEventQueuedIncludesQueueLen(t *testing.T) {
	evt := workflow.LastEvent{State: workflow.StateQueued, JobID: 3, Text: "hi", Speed: 17, QueueLen: 0, At: time.Now()}
	dto := FromLastEvent(evt)
	if dto.QueueLen == nil || *dto.QueueLen != 0 {
		t.Fatalf("queued event should carry queue_len even when zero: %+v", dto)
	}
	data, _ := json.Marshal(dto)
	if !strings.Contains(string(data), `"queue_len":0`) || !strings.Contains(string(data), `"txt":"hi"`) {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestFromLastEventDoneAndError(t *testing.T) {
	ack := keyer.Ack{OK: true, Code: ".", Speed: 17, Via: []string{"log"}}
	done := FromLastEvent(workflow.LastEvent{State: workflow.StateDone, Text: "e", Speed: 17, QueueLen: 2, Ack: &ack})
	if done.QueueLen == nil || *done.QueueLen != 2 {
		t.Fatalf("done event should carry queue_len, got %+v", done.QueueLen)
	}
	if !strings.Contains(string(done.Ack), `"via":["log"]`) {
		t.Fatalf("unexpected ack: %s", done.Ack)
	}

	failed := FromLastEvent(workflow.LastEvent{State: workflow.StateError, Text: "e", Detail: "boom"})
	if failed.Detail != "boom" || failed.Ack != nil || failed.QueueLen == nil || *failed.QueueLen != 0 {
		t.Fatalf("unexpected error event: %+v", failed)
	}
}

func TestFromStatusSummary(t *testing.T) {
	resp := FromStatusSummary(workflow.StatusSummary{Busy: true, QueueLen: 2, Speed: 22, Last: workflow.LastEvent{State: workflow.StateSending, Text: "x"}})
	if !resp.OK || !resp.Busy || resp.QueueLen != 2 || resp.Speed != 22 || resp.Last.State != "sending" {
		t.Fatalf("unexpected status: %+v", resp)
	}
}

func TestFromSubmission(t *testing.T) {
	resp := FromSubmission(workflow.Submission{Job: &queue.Job{ID: 9}, Text: "héllo", Runes: 5, Speed: 18})
	data, _ := json.Marshal(resp)
	want := `{"ok":true,"accepted":true,"txt":"héllo","len":5,"speed":18,"id":9}`
	if string(data) != want {
		t.Fatalf("got %s want %s", data, want)
	}
}

func TestFromTranscription(t *testing.T) {
	resp := FromTranscription("SOS #", morse.Render("SOS #"))
	if resp.Code != "... --- ..." {
		t.Fatalf("unexpected code: %q", resp.Code)
	}
	if len(resp.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(resp.Rows))
	}
	if resp.Counts != (RenderCounts{Encoded: 3, Spaces: 1, Unsupported: 1}) {
		t.Fatalf("unexpected counts: %+v", resp.Counts)
	}

	empty := FromTranscription("", morse.Render(""))
	data, _ := json.Marshal(empty)
	if !strings.Contains(string(data), `"rows":[]`) {
		t.Fatalf("empty render should have an empty rows array: %s", data)
	}
}
