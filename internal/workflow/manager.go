package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dit/internal/config"
	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/notifications"
	"dit/internal/queue"
)

// Manager coordinates job submission and the transmission lane.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	transmitter  keyer.Transmitter
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor
	wake      chan struct{}

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	last    LastEvent
	current *queue.Job
}

// NewManager constructs a workflow manager that notifies through ntfy when configured.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, transmitter keyer.Transmitter) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, transmitter, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
// A nil transmitter falls back to logging the code line.
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, transmitter keyer.Transmitter, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow-manager")
	if transmitter == nil {
		transmitter = keyer.NewLogTransmitter(logger)
	}
	poll := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		transmitter:  transmitter,
		pollInterval: poll,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		wake: make(chan struct{}, 1),
		last: LastEvent{State: StateIdle},
	}
}

// Transmitter reports the name of the configured transmitter.
func (m *Manager) Transmitter() string {
	return m.transmitter.Name()
}

// nudge wakes the lane without blocking when a wakeup is already pending.
func (m *Manager) nudge() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
