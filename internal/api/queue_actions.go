package api

import (
	"context"

	"dit/internal/queue"
)

// QueueActionStore captures the queue operations behind retry and remove.
type QueueActionStore interface {
	GetByID(ctx context.Context, id int64) (*queue.Job, error)
	RetryFailed(ctx context.Context, ids ...int64) (int64, error)
	Remove(ctx context.Context, id int64) (bool, error)
}

type RetryJobOutcome string

const (
	RetryJobUpdated      RetryJobOutcome = "retried"
	RetryJobNotFound     RetryJobOutcome = "not_found"
	RetryJobNotFailed    RetryJobOutcome = "not_failed"
	RetryJobNotRetryable RetryJobOutcome = "not_retryable"
)

type RetryJobResult struct {
	ID      int64           `json:"id"`
	Outcome RetryJobOutcome `json:"outcome"`
}

type RetryJobsResult struct {
	UpdatedCount int64            `json:"updatedCount"`
	Jobs         []RetryJobResult `json:"jobs"`
}

// RetryFailedJobsByID validates IDs and retries only failed, retryable jobs.
func RetryFailedJobsByID(ctx context.Context, store QueueActionStore, ids []int64) (RetryJobsResult, error) {
	result := RetryJobsResult{Jobs: make([]RetryJobResult, 0, len(ids))}
	for _, id := range ids {
		job, err := store.GetByID(ctx, id)
		if err != nil {
			return RetryJobsResult{}, err
		}
		switch {
		case job == nil:
			result.Jobs = append(result.Jobs, RetryJobResult{ID: id, Outcome: RetryJobNotFound})
			continue
		case job.Status != queue.StatusFailed:
			result.Jobs = append(result.Jobs, RetryJobResult{ID: id, Outcome: RetryJobNotFailed})
			continue
		case !job.Retryable:
			result.Jobs = append(result.Jobs, RetryJobResult{ID: id, Outcome: RetryJobNotRetryable})
			continue
		}
		updated, err := store.RetryFailed(ctx, id)
		if err != nil {
			return RetryJobsResult{}, err
		}
		if updated > 0 {
			result.UpdatedCount += updated
			result.Jobs = append(result.Jobs, RetryJobResult{ID: id, Outcome: RetryJobUpdated})
			continue
		}
		result.Jobs = append(result.Jobs, RetryJobResult{ID: id, Outcome: RetryJobNotFailed})
	}
	return result, nil
}

type RemoveJobOutcome string

const (
	RemoveJobRemoved  RemoveJobOutcome = "removed"
	RemoveJobNotFound RemoveJobOutcome = "not_found"
	RemoveJobInFlight RemoveJobOutcome = "in_flight"
)

type RemoveJobResult struct {
	ID      int64            `json:"id"`
	Outcome RemoveJobOutcome `json:"outcome"`
}

type RemoveJobsResult struct {
	RemovedCount int64             `json:"removedCount"`
	Jobs         []RemoveJobResult `json:"jobs"`
}

// RemoveJobsByID removes jobs one-by-one so each ID can report its outcome.
// Jobs that are being transmitted are left alone.
func RemoveJobsByID(ctx context.Context, store QueueActionStore, ids []int64) (RemoveJobsResult, error) {
	result := RemoveJobsResult{Jobs: make([]RemoveJobResult, 0, len(ids))}
	for _, id := range ids {
		job, err := store.GetByID(ctx, id)
		if err != nil {
			return RemoveJobsResult{}, err
		}
		if job == nil {
			result.Jobs = append(result.Jobs, RemoveJobResult{ID: id, Outcome: RemoveJobNotFound})
			continue
		}
		if job.IsProcessing() {
			result.Jobs = append(result.Jobs, RemoveJobResult{ID: id, Outcome: RemoveJobInFlight})
			continue
		}
		removed, err := store.Remove(ctx, id)
		if err != nil {
			return RemoveJobsResult{}, err
		}
		if removed {
			result.RemovedCount++
			result.Jobs = append(result.Jobs, RemoveJobResult{ID: id, Outcome: RemoveJobRemoved})
			continue
		}
		result.Jobs = append(result.Jobs, RemoveJobResult{ID: id, Outcome: RemoveJobNotFound})
	}
	return result, nil
}
