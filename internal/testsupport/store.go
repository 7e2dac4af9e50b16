package testsupport

import (
	"context"
	"testing"

	"dit/internal/config"
	"dit/internal/keyer"
	"dit/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues text at speed with its computed Morse line.
func NewJob(t testing.TB, store *queue.Store, text string, speed int) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), text, speed, keyer.Code(text), "")
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}
