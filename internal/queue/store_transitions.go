package queue

import (
	"context"
	"fmt"
	"time"
)

// ClaimNext moves the oldest queued job to sending and returns it. It returns
// (nil, nil) when nothing is queued or another caller claimed the job first.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	job, err := s.NextForStatuses(ctx, StatusQueued)
	if err != nil || job == nil {
		return nil, err
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, started_at = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusSending,
		formatTime(now),
		formatTime(now),
		formatTime(now),
		job.ID,
		StatusQueued,
	)
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return nil, err
	}
	job.Status = StatusSending
	job.StartedAt = &now
	job.LastHeartbeat = &now
	job.UpdatedAt = now
	return job, nil
}

// MarkDone records a successful transmission and its acknowledgement.
func (s *Store) MarkDone(ctx context.Context, job *Job, ack string) error {
	now := time.Now().UTC()
	job.Status = StatusDone
	job.Ack = ack
	job.ErrorMessage = ""
	job.FinishedAt = &now
	job.LastHeartbeat = nil
	return s.Update(ctx, job)
}

// MarkFailed records a failed transmission.
func (s *Store) MarkFailed(ctx context.Context, job *Job, message string, retryable bool) error {
	now := time.Now().UTC()
	job.Status = StatusFailed
	job.ErrorMessage = message
	job.Retryable = retryable
	job.FinishedAt = &now
	job.LastHeartbeat = nil
	return s.Update(ctx, job)
}

// ResetStuckProcessing returns every sending job to queued. The daemon calls
// it on startup, when no transmission can legitimately be in flight.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, started_at = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status = ?`,
		StatusQueued,
		nowString(),
		StatusSending,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := nowString()
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
		now,
		now,
		id,
		StatusSending,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing requeues sending jobs whose heartbeat is older than cutoff.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, started_at = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusQueued,
		nowString(),
		StatusSending,
		formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves retryable failed jobs back to queued. With no ids every
// retryable failed job is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	query := `UPDATE jobs
        SET status = ?, error_message = NULL, ack = NULL, started_at = NULL,
            finished_at = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status = ? AND retryable = 1`
	args := []any{StatusQueued, nowString(), StatusFailed}
	if len(ids) > 0 {
		query += ` AND id IN (` + makePlaceholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed jobs: %w", err)
	}
	return res.RowsAffected()
}

// FailSending marks every job still sending as failed and retryable with
// reason. The workflow manager calls it after its lane has exited so no job
// outlives the process in the sending state.
func (s *Store) FailSending(ctx context.Context, reason string) (int64, error) {
	now := nowString()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, retryable = 1, finished_at = ?, last_heartbeat = NULL, updated_at = ?
         WHERE status = ?`,
		StatusFailed,
		reason,
		now,
		now,
		StatusSending,
	)
	if err != nil {
		return 0, fmt.Errorf("fail sending jobs: %w", err)
	}
	return res.RowsAffected()
}
