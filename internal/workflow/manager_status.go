package workflow

import (
	"context"
	"time"

	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/queue"
)

// Last-event states reported by /status.
const (
	StateIdle    = "idle"
	StateQueued  = "queued"
	StateSending = "sending"
	StateDone    = "done"
	StateError   = "error"
)

// LastEvent is the most recent lifecycle event seen by the manager.
type LastEvent struct {
	State    string
	JobID    int64
	Text     string
	Speed    int
	QueueLen int
	Ack      *keyer.Ack
	Detail   string
	At       time.Time
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	Busy        bool
	QueueLen    int
	Speed       int
	Transmitter string
	Last        LastEvent
	LastError   string
	Current     *queue.Job
	QueueStats  map[queue.Status]int
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:     m.running,
		Busy:        m.current != nil,
		Transmitter: m.transmitter.Name(),
		Last:        m.last,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.current != nil {
		cp := *m.current
		summary.Current = &cp
	}
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}
	summary.QueueStats = stats
	summary.QueueLen = stats[queue.StatusQueued]
	summary.Speed = m.Speed(ctx)
	return summary
}

// Last returns the most recent lifecycle event.
func (m *Manager) Last() LastEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Busy reports whether a job is currently being transmitted.
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *Manager) setLast(evt LastEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	m.mu.Lock()
	m.last = evt
	m.mu.Unlock()
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setCurrent(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		cp := *job
		m.current = &cp
	} else {
		m.current = nil
	}
	m.mu.Unlock()
}
