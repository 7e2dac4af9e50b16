package workflow

import (
	"context"
	"errors"
	"strings"

	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/notifications"
	"dit/internal/queue"
)

// Submission describes an accepted transmission request.
type Submission struct {
	Job      *queue.Job
	Text     string
	Runes    int
	Speed    int
	QueueLen int
}

// Submit normalizes raw text, resolves the speed, and enqueues a job. An empty
// or unparsable rawSpeed falls back to the global speed. Text errors are
// keyer.ErrEmptyText and keyer.ErrTooLong.
func (m *Manager) Submit(ctx context.Context, rawText, rawSpeed, requestID string) (Submission, error) {
	text, err := keyer.PrepareText(rawText, m.cfg.Keyer.MaxTextLength)
	if err != nil {
		return Submission{}, err
	}

	speed := m.Speed(ctx)
	if strings.TrimSpace(rawSpeed) != "" {
		if parsed, err := keyer.ParseSpeed(rawSpeed, m.cfg.Keyer.MinSpeed, m.cfg.Keyer.MaxSpeed); err == nil {
			speed = parsed
		}
	}

	job, err := m.store.Enqueue(ctx, text, speed, keyer.Code(text), requestID)
	if err != nil {
		return Submission{}, err
	}
	queueLen, err := m.store.CountByStatus(ctx, queue.StatusQueued)
	if err != nil {
		m.logger.Warn("failed to count queued jobs", logging.Error(err))
	}

	sub := Submission{Job: job, Text: text, Runes: job.Runes(), Speed: speed, QueueLen: queueLen}
	m.setLast(LastEvent{State: StateQueued, JobID: job.ID, Text: text, Speed: speed, QueueLen: queueLen})
	logging.WithContext(logging.WithJobID(ctx, job.ID), m.logger).Info("transmission queued",
		logging.String(logging.FieldEventType, "transmission_queued"),
		logging.Speed(speed),
		logging.Runes(sub.Runes),
		logging.Int("queue_len", queueLen),
	)
	m.publish(ctx, notifications.EventTransmissionQueued, notifications.Payload{
		"text":  text,
		"speed": speed,
	})
	m.nudge()
	return sub, nil
}

// Speed returns the global speed, clamped to the configured range.
func (m *Manager) Speed(ctx context.Context) int {
	speed, err := m.store.Speed(ctx, m.cfg.Keyer.DefaultSpeed)
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn("failed to read stored speed; using default", logging.Error(err))
	}
	return m.cfg.ClampSpeed(speed)
}

// SetSpeed parses, clamps, and persists a new global speed. A value that is
// not an integer returns keyer.ErrBadSpeed.
func (m *Manager) SetSpeed(ctx context.Context, raw string) (int, error) {
	speed, err := keyer.ParseSpeed(raw, m.cfg.Keyer.MinSpeed, m.cfg.Keyer.MaxSpeed)
	if err != nil {
		return 0, err
	}
	if err := m.store.SetSpeed(ctx, speed); err != nil {
		return 0, err
	}
	m.logger.Info("speed updated",
		logging.String(logging.FieldEventType, "speed_updated"),
		logging.Speed(speed),
	)
	return speed, nil
}
