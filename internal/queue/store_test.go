package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dit/internal/queue"
	"dit/internal/testsupport"
)

func TestEnqueueAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, "SOS", 20, "... --- ...", "req-1")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("expected queued status, got %s", job.Status)
	}
	if !job.Retryable {
		t.Fatal("new jobs should be retryable")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Text != "SOS" || fetched.Speed != 20 || fetched.Code != "... --- ..." || fetched.RequestID != "req-1" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
	if fetched.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestEnqueueRejectsBlankText(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Enqueue(context.Background(), "   ", 17, "", ""); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job, err := store.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %#v", job)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	err := store.Update(context.Background(), &queue.Job{ID: 42, Text: "x", Status: queue.StatusQueued})
	if !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimNextIsFIFO(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewJob(t, store, "first", 17)
	second := testsupport.NewJob(t, store, "second", 17)

	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected first job, got %#v", claimed)
	}
	if claimed.Status != queue.StatusSending || claimed.StartedAt == nil || claimed.LastHeartbeat == nil {
		t.Fatalf("claimed job not marked sending: %#v", claimed)
	}

	claimed, err = store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed == nil || claimed.ID != second.ID {
		t.Fatalf("expected second job, got %#v", claimed)
	}

	claimed, err = store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected empty queue, got %#v", claimed)
	}
}

func TestMarkDoneAndFailed(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewJob(t, store, "ok", 17)
	testsupport.NewJob(t, store, "bad", 17)

	job, _ := store.ClaimNext(ctx)
	if err := store.MarkDone(ctx, job, `{"ok":true}`); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	done, _ := store.GetByID(ctx, job.ID)
	if done.Status != queue.StatusDone || done.Ack != `{"ok":true}` || done.FinishedAt == nil || done.LastHeartbeat != nil {
		t.Fatalf("unexpected done job: %#v", done)
	}
	if done.Duration() < 0 {
		t.Fatalf("negative duration: %s", done.Duration())
	}

	job, _ = store.ClaimNext(ctx)
	if err := store.MarkFailed(ctx, job, "keyer offline", false); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	failed, _ := store.GetByID(ctx, job.ID)
	if failed.Status != queue.StatusFailed || failed.ErrorMessage != "keyer offline" || failed.Retryable {
		t.Fatalf("unexpected failed job: %#v", failed)
	}
}

func TestRetryFailedSkipsNonRetryable(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	a := testsupport.NewJob(t, store, "a", 17)
	b := testsupport.NewJob(t, store, "b", 17)
	for _, retryable := range []bool{true, false} {
		job, err := store.ClaimNext(ctx)
		if err != nil || job == nil {
			t.Fatalf("ClaimNext: %v", err)
		}
		if err := store.MarkFailed(ctx, job, "boom", retryable); err != nil {
			t.Fatalf("MarkFailed: %v", err)
		}
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried job, got %d", count)
	}
	retried, _ := store.GetByID(ctx, a.ID)
	if retried.Status != queue.StatusQueued || retried.ErrorMessage != "" || retried.FinishedAt != nil {
		t.Fatalf("retryable job not reset: %#v", retried)
	}
	kept, _ := store.GetByID(ctx, b.ID)
	if kept.Status != queue.StatusFailed {
		t.Fatalf("non-retryable job should stay failed: %#v", kept)
	}

	count, err = store.RetryFailed(ctx, b.ID)
	if err != nil {
		t.Fatalf("RetryFailed by id failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no retries for non-retryable job, got %d", count)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "stuck", 17)
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reset, got %d", count)
	}
	reset, _ := store.GetByID(ctx, job.ID)
	if reset.Status != queue.StatusQueued || reset.StartedAt != nil || reset.LastHeartbeat != nil {
		t.Fatalf("job not reset: %#v", reset)
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "stale", 17)
	claimed, err := store.ClaimNext(ctx)
	if err != nil || claimed == nil {
		t.Fatalf("ClaimNext: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh heartbeat should not be reclaimed, got %d", count)
	}

	old := time.Now().Add(-10 * time.Minute)
	claimed.LastHeartbeat = &old
	if err := store.Update(ctx, claimed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	count, err = store.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reclaimed job, got %d", count)
	}
	reclaimed, _ := store.GetByID(ctx, job.ID)
	if reclaimed.Status != queue.StatusQueued {
		t.Fatalf("expected queued after reclaim, got %s", reclaimed.Status)
	}
}

func TestUpdateHeartbeatOnlyTouchesSending(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "idle", 17)
	if err := store.UpdateHeartbeat(ctx, job.ID); err != nil {
		t.Fatalf("UpdateHeartbeat failed: %v", err)
	}
	fetched, _ := store.GetByID(ctx, job.ID)
	if fetched.LastHeartbeat != nil {
		t.Fatal("queued job should not receive a heartbeat")
	}
}

func TestFailSending(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "interrupted", 17)
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	count, err := store.FailSending(ctx, queue.DaemonStopReason)
	if err != nil || count != 1 {
		t.Fatalf("FailSending = %d, %v", count, err)
	}
	failed, _ := store.GetByID(ctx, job.ID)
	if failed.Status != queue.StatusFailed || failed.ErrorMessage != queue.DaemonStopReason || !failed.Retryable {
		t.Fatalf("unexpected job after FailSending: %#v", failed)
	}
}

func TestListRecentAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewJob(t, store, "one", 17)
	testsupport.NewJob(t, store, "two", 17)
	third := testsupport.NewJob(t, store, "three", 17)

	claimed, _ := store.ClaimNext(ctx)
	_ = store.MarkDone(ctx, claimed, "ok")
	claimed, _ = store.ClaimNext(ctx)
	_ = store.MarkFailed(ctx, claimed, "boom", true)

	all, err := store.List(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("List all = %d, %v", len(all), err)
	}
	queued, err := store.List(ctx, queue.StatusQueued)
	if err != nil || len(queued) != 1 || queued[0].ID != third.ID {
		t.Fatalf("List queued = %#v, %v", queued, err)
	}
	recent, err := store.Recent(ctx, 2)
	if err != nil || len(recent) != 2 || recent[0].ID != third.ID {
		t.Fatalf("Recent = %#v, %v", recent, err)
	}
	count, err := store.CountByStatus(ctx, queue.StatusQueued, queue.StatusSending)
	if err != nil || count != 1 {
		t.Fatalf("CountByStatus = %d, %v", count, err)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("ClearCompleted = %d, %v", removed, err)
	}
	removed, err = store.ClearFailed(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("ClearFailed = %d, %v", removed, err)
	}
	ok, err := store.Remove(ctx, third.ID)
	if err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	ok, err = store.Remove(ctx, third.ID)
	if err != nil || ok {
		t.Fatalf("second Remove = %v, %v", ok, err)
	}

	testsupport.NewJob(t, store, "four", 17)
	removed, err = store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
}

func TestHealthAndCheckHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewJob(t, store, "a", 17)
	testsupport.NewJob(t, store, "b", 17)
	claimed, _ := store.ClaimNext(ctx)
	_ = store.MarkDone(ctx, claimed, "ok")

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Total != 2 || summary.Queued != 1 || summary.Done != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("unexpected missing columns: %v", health.MissingColumns)
	}
	if health.TotalJobs != 2 {
		t.Fatalf("expected 2 jobs, got %d", health.TotalJobs)
	}
}

func TestSpeedSetting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	speed, err := store.Speed(ctx, 17)
	if err != nil || speed != 17 {
		t.Fatalf("Speed fallback = %d, %v", speed, err)
	}
	if err := store.SetSpeed(ctx, 22); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if err := store.SetSpeed(ctx, 24); err != nil {
		t.Fatalf("SetSpeed overwrite: %v", err)
	}
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	speed, err = reopened.Speed(ctx, 17)
	if err != nil || speed != 24 {
		t.Fatalf("Speed after reopen = %d, %v", speed, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if _, err := store.ExecForTest(context.Background(), "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	if _, err := queue.Open(cfg); !errors.Is(err, queue.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	if _, retryable := queue.FailureStatus(errors.New("network")); !retryable {
		t.Fatal("plain errors should be retryable")
	}
	if _, retryable := queue.FailureStatus(kindError("validation")); retryable {
		t.Fatal("validation errors should not be retryable")
	}
}

type kindError string

func (k kindError) Error() string     { return string(k) }
func (k kindError) ErrorKind() string { return string(k) }
