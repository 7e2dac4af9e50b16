package workflow

import (
	"context"
	"errors"

	"dit/internal/logging"
	"dit/internal/notifications"
	"dit/internal/queue"
)

func (m *Manager) notifyCompleted(ctx context.Context, job *queue.Job) {
	m.publish(ctx, notifications.EventTransmissionCompleted, notifications.Payload{
		"text":  job.Text,
		"speed": job.Speed,
		"code":  job.Code,
	})
}

func (m *Manager) notifyFailed(ctx context.Context, job *queue.Job, message string) {
	m.publish(ctx, notifications.EventTransmissionFailed, notifications.Payload{
		"text":  job.Text,
		"speed": job.Speed,
		"error": message,
	})
}

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not send notification", logging.String("event", string(event)))
			return
		}
		m.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
