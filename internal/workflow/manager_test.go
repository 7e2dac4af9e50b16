package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dit/internal/config"
	"dit/internal/keyer"
	"dit/internal/notifications"
	"dit/internal/queue"
	"dit/internal/testsupport"
	"dit/internal/workflow"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) has(event notifications.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type fakeTransmitter struct {
	mu      sync.Mutex
	sent    []keyer.Request
	err     error
	release chan struct{}
}

func (f *fakeTransmitter) Name() string { return "fake" }

func (f *fakeTransmitter) Transmit(ctx context.Context, req keyer.Request) (keyer.Ack, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return keyer.Ack{}, ctx.Err()
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	if f.err != nil {
		return keyer.Ack{}, f.err
	}
	return keyer.Ack{OK: true, Code: req.Code, Speed: req.Speed, Via: []string{"fake"}}, nil
}

func (f *fakeTransmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newManager(t *testing.T, tx keyer.Transmitter) (*workflow.Manager, *queue.Store, *recordingNotifier, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, nil, tx, notifier)
	return mgr, store, notifier, cfg
}

func startManager(t *testing.T, mgr *workflow.Manager) {
	t.Helper()
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubmitTransmitsAndRecordsAck(t *testing.T) {
	tx := &fakeTransmitter{}
	mgr, store, notifier, _ := newManager(t, tx)
	ctx := context.Background()

	if last := mgr.Last(); last.State != workflow.StateIdle {
		t.Fatalf("expected idle before any submission, got %q", last.State)
	}

	startManager(t, mgr)
	sub, err := mgr.Submit(ctx, "  SOS\r\n", "20", "req-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Text != "SOS" || sub.Runes != 3 || sub.Speed != 20 {
		t.Fatalf("unexpected submission: %+v", sub)
	}

	waitFor(t, "job done", func() bool {
		return mgr.Last().State == workflow.StateDone && !mgr.Busy()
	})

	job, _ := store.GetByID(ctx, sub.Job.ID)
	if job.Status != queue.StatusDone || job.Code != "... --- ..." {
		t.Fatalf("unexpected code: %q", job.Code)
	}
	if job.Ack == "" {
		t.Fatal("expected ack to be stored")
	}
	last := mgr.Last()
	if last.State != workflow.StateDone || last.Ack == nil || last.Text != "SOS" {
		t.Fatalf("unexpected last event: %+v", last)
	}
	if !notifier.has(notifications.EventTransmissionCompleted) {
		t.Fatal("expected completion notification")
	}
	if mgr.Busy() {
		t.Fatal("manager should be idle after completion")
	}
}

func TestSubmitFallsBackToGlobalSpeed(t *testing.T) {
	mgr, _, _, cfg := newManager(t, &fakeTransmitter{})
	ctx := context.Background()

	sub, err := mgr.Submit(ctx, "hi", "fast", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Speed != cfg.Keyer.DefaultSpeed {
		t.Fatalf("expected default speed %d, got %d", cfg.Keyer.DefaultSpeed, sub.Speed)
	}

	if _, err := mgr.SetSpeed(ctx, "25"); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	sub, err = mgr.Submit(ctx, "hi", "", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Speed != 25 {
		t.Fatalf("expected stored speed 25, got %d", sub.Speed)
	}

	sub, err = mgr.Submit(ctx, "hi", "99", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Speed != cfg.Keyer.MaxSpeed {
		t.Fatalf("expected clamped speed %d, got %d", cfg.Keyer.MaxSpeed, sub.Speed)
	}
	if last := mgr.Last(); last.State != workflow.StateQueued || last.QueueLen != 3 {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

func TestSubmitRejectsEmptyAndLongText(t *testing.T) {
	mgr, store, _, cfg := newManager(t, &fakeTransmitter{})
	ctx := context.Background()

	if _, err := mgr.Submit(ctx, " \r\n ", "", ""); !errors.Is(err, keyer.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	long := make([]rune, cfg.Keyer.MaxTextLength+1)
	for i := range long {
		long[i] = 'e'
	}
	if _, err := mgr.Submit(ctx, string(long), "", ""); !errors.Is(err, keyer.ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("rejected text should not be queued, got %d jobs", len(jobs))
	}
	if last := mgr.Last(); last.State != workflow.StateIdle {
		t.Fatalf("rejected text should not change last, got %+v", last)
	}
}

func TestSetSpeedRejectsNonInteger(t *testing.T) {
	mgr, _, _, cfg := newManager(t, &fakeTransmitter{})
	ctx := context.Background()

	if _, err := mgr.SetSpeed(ctx, "abc"); !errors.Is(err, keyer.ErrBadSpeed) {
		t.Fatalf("expected ErrBadSpeed, got %v", err)
	}
	speed, err := mgr.SetSpeed(ctx, "1")
	if err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	if speed != cfg.Keyer.MinSpeed {
		t.Fatalf("expected clamp to %d, got %d", cfg.Keyer.MinSpeed, speed)
	}
	if got := mgr.Speed(ctx); got != cfg.Keyer.MinSpeed {
		t.Fatalf("Speed = %d, want %d", got, cfg.Keyer.MinSpeed)
	}
}

func TestTransmitFailureMarksJobFailed(t *testing.T) {
	tx := &fakeTransmitter{err: &notifications.StatusError{StatusCode: 400, Body: "bad topic"}}
	mgr, store, notifier, _ := newManager(t, tx)
	ctx := context.Background()
	startManager(t, mgr)

	sub, err := mgr.Submit(ctx, "test", "", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, "job failed", func() bool {
		return mgr.Last().State == workflow.StateError && !mgr.Busy()
	})

	job, _ := store.GetByID(ctx, sub.Job.ID)
	if job.Status != queue.StatusFailed || job.ErrorMessage != "ntfy returned 400: bad topic" {
		t.Fatalf("unexpected error message: %q", job.ErrorMessage)
	}
	if job.Retryable {
		t.Fatal("ntfy 4xx failures should not be retryable")
	}
	last := mgr.Last()
	if last.State != workflow.StateError || last.Detail != "ntfy returned 400: bad topic" {
		t.Fatalf("unexpected last event: %+v", last)
	}
	if !notifier.has(notifications.EventTransmissionFailed) {
		t.Fatal("expected failure notification")
	}
	if summary := mgr.Status(ctx); summary.LastError == "" {
		t.Fatal("expected last error in status")
	}
}

func TestTransmitFailureRetryability(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "missing notifier", err: keyer.ConfigError{Reason: "ntfy transmitter has no notifier"}, retryable: false},
		{name: "ntfy rate limited", err: &notifications.StatusError{StatusCode: 429}, retryable: true},
		{name: "ntfy unavailable", err: &notifications.StatusError{StatusCode: 503}, retryable: true},
		{name: "network error", err: errors.New("connection refused"), retryable: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mgr, store, _, _ := newManager(t, &fakeTransmitter{err: tc.err})
			ctx := context.Background()
			startManager(t, mgr)

			sub, err := mgr.Submit(ctx, "test", "", "")
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			waitFor(t, "job failed", func() bool {
				job, _ := store.GetByID(ctx, sub.Job.ID)
				return job != nil && job.Status == queue.StatusFailed
			})
			job, _ := store.GetByID(ctx, sub.Job.ID)
			if job.Retryable != tc.retryable {
				t.Fatalf("expected retryable=%v, got %v", tc.retryable, job.Retryable)
			}
		})
	}
}

func TestSingleJobInFlight(t *testing.T) {
	tx := &fakeTransmitter{release: make(chan struct{})}
	mgr, store, _, _ := newManager(t, tx)
	ctx := context.Background()
	startManager(t, mgr)

	if _, err := mgr.Submit(ctx, "one", "", ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, "busy", mgr.Busy)
	if last := mgr.Last(); last.State != workflow.StateSending || last.Text != "one" {
		t.Fatalf("expected sending event, got %+v", last)
	}
	if _, err := mgr.Submit(ctx, "two", "", ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	summary := mgr.Status(ctx)
	if !summary.Busy || summary.QueueLen != 1 || summary.Current == nil || summary.Current.Text != "one" {
		t.Fatalf("unexpected status while sending: %+v", summary)
	}
	if summary.QueueStats[queue.StatusSending] != 1 {
		t.Fatalf("expected exactly one sending job, got %v", summary.QueueStats)
	}

	close(tx.release)
	waitFor(t, "both jobs sent", func() bool { return tx.count() == 2 })
	waitFor(t, "queue drained", func() bool {
		done, _ := store.CountByStatus(ctx, queue.StatusDone)
		return done == 2
	})
	if tx.sent[0].Text != "one" || tx.sent[1].Text != "two" {
		t.Fatalf("jobs transmitted out of order: %+v", tx.sent)
	}
}

func TestLastEventTracksQueueLength(t *testing.T) {
	tx := &fakeTransmitter{release: make(chan struct{})}
	mgr, store, _, _ := newManager(t, tx)
	ctx := context.Background()
	startManager(t, mgr)

	if _, err := mgr.Submit(ctx, "one", "", ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, "sending one", func() bool {
		last := mgr.Last()
		return last.State == workflow.StateSending && last.Text == "one"
	})
	if last := mgr.Last(); last.QueueLen != 0 {
		t.Fatalf("expected empty queue behind one, got %+v", last)
	}

	for _, text := range []string{"two", "three"} {
		if _, err := mgr.Submit(ctx, text, "", ""); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	tx.release <- struct{}{}
	waitFor(t, "sending two", func() bool {
		last := mgr.Last()
		return last.State == workflow.StateSending && last.Text == "two"
	})
	if last := mgr.Last(); last.QueueLen != 1 {
		t.Fatalf("expected one job behind two, got %+v", last)
	}

	close(tx.release)
	waitFor(t, "queue drained", func() bool {
		done, _ := store.CountByStatus(ctx, queue.StatusDone)
		return done == 3 && !mgr.Busy()
	})
	waitFor(t, "three done", func() bool {
		last := mgr.Last()
		return last.State == workflow.StateDone && last.Text == "three"
	})
	if last := mgr.Last(); last.QueueLen != 0 {
		t.Fatalf("expected empty queue after three, got %+v", last)
	}
}

func TestStartResetsStuckJobs(t *testing.T) {
	tx := &fakeTransmitter{}
	mgr, store, _, _ := newManager(t, tx)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "left over", 17)
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}

	startManager(t, mgr)
	waitFor(t, "stuck job resent", func() bool {
		got, _ := store.GetByID(ctx, job.ID)
		return got != nil && got.Status == queue.StatusDone
	})
}

func TestStartTwiceFails(t *testing.T) {
	mgr, _, _, _ := newManager(t, &fakeTransmitter{})
	startManager(t, mgr)
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestStopDuringTransmitFailsJob(t *testing.T) {
	tx := &fakeTransmitter{release: make(chan struct{})}
	mgr, store, _, _ := newManager(t, tx)
	ctx := context.Background()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sub, err := mgr.Submit(ctx, "interrupted", "", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, "busy", mgr.Busy)
	mgr.Stop()

	job, _ := store.GetByID(ctx, sub.Job.ID)
	if job.Status != queue.StatusFailed || job.ErrorMessage != queue.DaemonStopReason || !job.Retryable {
		t.Fatalf("unexpected job after stop: %#v", job)
	}
}

func TestStopFailsJobsLeftSending(t *testing.T) {
	tx := &fakeTransmitter{release: make(chan struct{})}
	mgr, store, _, _ := newManager(t, tx)
	ctx := context.Background()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := mgr.Submit(ctx, "one", "", ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, "busy", mgr.Busy)

	// A job claimed outside the lane stays sending unless Stop settles it.
	if _, err := store.Enqueue(ctx, "orphan", 17, "---", ""); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	orphan, err := store.ClaimNext(ctx)
	if err != nil || orphan == nil || orphan.Text != "orphan" {
		t.Fatalf("ClaimNext = %+v, %v", orphan, err)
	}

	mgr.Stop()

	job, _ := store.GetByID(ctx, orphan.ID)
	if job.Status != queue.StatusFailed || job.ErrorMessage != queue.DaemonStopReason || !job.Retryable {
		t.Fatalf("unexpected orphan after stop: %#v", job)
	}
	if n, _ := store.CountByStatus(ctx, queue.StatusSending); n != 0 {
		t.Fatalf("expected no sending jobs after stop, got %d", n)
	}
}
