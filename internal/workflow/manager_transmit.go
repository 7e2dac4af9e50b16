package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/queue"
)

const transmitStage = "transmit"

func (m *Manager) processJob(ctx context.Context, job *queue.Job) {
	requestID := strings.TrimSpace(job.RequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	jobCtx := logging.WithRequestID(logging.WithStage(logging.WithJobID(ctx, job.ID), transmitStage), requestID)
	logger := logging.WithContext(jobCtx, m.logger)

	m.setLast(LastEvent{State: StateSending, JobID: job.ID, Text: job.Text, Speed: job.Speed, QueueLen: m.queuedCount(ctx)})
	m.setCurrent(job)
	defer m.setCurrent(nil)

	started := time.Now()
	logger.Info("transmission started",
		logging.String(logging.FieldEventType, "transmission_start"),
		logging.Speed(job.Speed),
		logging.Runes(job.Runes()),
		logging.Transmitter(m.transmitter.Name()),
	)

	ack, err := m.executeWithHeartbeat(jobCtx, job)

	// The lane context may already be cancelled; outcomes still need persisting.
	persistCtx := context.WithoutCancel(jobCtx)
	if err != nil {
		if ctx.Err() != nil {
			err = errors.New(queue.DaemonStopReason)
		}
		m.handleTransmitFailure(persistCtx, logger, job, err)
		return
	}
	m.handleTransmitSuccess(persistCtx, logger, job, ack, time.Since(started))
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, job *queue.Job) (keyer.Ack, error) {
	timeout := time.Duration(m.cfg.Keyer.TransmitTimeout) * time.Second
	transmitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	if m.heartbeat.Enabled() {
		wg.Add(1)
		go m.heartbeat.StartLoop(transmitCtx, &wg, job.ID)
	}

	ack, err := m.transmitter.Transmit(transmitCtx, keyer.Request{
		JobID: job.ID,
		Text:  job.Text,
		Speed: job.Speed,
		Code:  job.Code,
	})
	cancel()
	wg.Wait()

	if err == nil && transmitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return keyer.Ack{}, fmt.Errorf("transmit timed out after %s", timeout)
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return keyer.Ack{}, fmt.Errorf("transmit timed out after %s: %w", timeout, err)
	}
	return ack, err
}

func (m *Manager) handleTransmitSuccess(ctx context.Context, logger *slog.Logger, job *queue.Job, ack keyer.Ack, elapsed time.Duration) {
	raw, err := json.Marshal(ack)
	if err != nil {
		raw = []byte(`{"ok":true}`)
	}
	if err := m.store.MarkDone(ctx, job, string(raw)); err != nil {
		m.setLastError(err)
		logging.ErrorWithContext(logger, "failed to persist transmission result", "job_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}

	logger.Info("transmission completed",
		logging.String(logging.FieldEventType, "transmission_complete"),
		logging.Duration("elapsed", elapsed),
		logging.String("via", strings.Join(ack.Via, ",")),
	)
	m.setLast(LastEvent{State: StateDone, JobID: job.ID, Text: job.Text, Speed: job.Speed, QueueLen: m.queuedCount(ctx), Ack: &ack})
	m.notifyCompleted(ctx, job)
}

func (m *Manager) handleTransmitFailure(ctx context.Context, logger *slog.Logger, job *queue.Job, transmitErr error) {
	_, retryable := queue.FailureStatus(transmitErr)
	message := strings.TrimSpace(transmitErr.Error())
	if message == "" {
		message = "transmit failed without error detail"
	}

	logger.Error("transmission failed",
		logging.String(logging.FieldEventType, "transmission_failure"),
		logging.Alert("transmission_failure"),
		logging.String("error_message", message),
		logging.Bool("retryable", retryable),
		logging.String(logging.FieldErrorHint, "run dit queue retry once the transmitter is reachable"),
		logging.Error(transmitErr),
	)

	if err := m.store.MarkFailed(ctx, job, message, retryable); err != nil {
		m.setLastError(err)
		logging.ErrorWithContext(logger, "failed to persist transmission failure", "job_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
	m.setLastError(transmitErr)
	m.setLast(LastEvent{State: StateError, JobID: job.ID, Text: job.Text, Speed: job.Speed, QueueLen: m.queuedCount(ctx), Detail: message})
	m.notifyFailed(ctx, job, message)
}

// queuedCount reports how many jobs wait behind the current one. A store error
// is logged and reported as zero.
func (m *Manager) queuedCount(ctx context.Context) int {
	n, err := m.store.CountByStatus(ctx, queue.StatusQueued)
	if err != nil {
		m.logger.Warn("count queued jobs failed", logging.Error(err))
		return 0
	}
	return n
}
