package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"dit/internal/config"
	"dit/internal/daemon"
	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/notifications"
	"dit/internal/preflight"
	"dit/internal/queue"
	"dit/internal/workflow"
)

const (
	logHubCapacity = 4096
	pidFileName    = "ditd.pid"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel    string
	Development bool
}

// Run starts the ditd runtime loop and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logHub := logging.NewStreamHub(logHubCapacity)
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
		Stream:           logHub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if removed := logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath); removed > 0 {
		logger.Info("pruned old logs", logging.Int("removed", removed))
	}
	logPreflight(signalCtx, logger, cfg)

	pidPath := filepath.Join(cfg.Paths.StateDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	workflowManager := workflow.NewManagerWithNotifier(cfg, store, logger, BuildTransmitter(cfg, logger, notifier), notifier)

	d, err := daemon.New(cfg, store, logger, workflowManager, logHub)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check api_bind and that no other ditd is running"),
			logging.String(logging.FieldImpact, "no jobs will be transmitted"),
		)
		return err
	}
	logger.Info("ditd listening",
		logging.String(logging.FieldEventType, "daemon_listening"),
		logging.String("address", d.Addr()),
		logging.String("queue_db", store.Path()),
	)

	<-signalCtx.Done()
	logger.Info("ditd shutting down")
	return nil
}

// BuildTransmitter returns the log transmitter, fanned out to ntfy when a
// topic is configured.
func BuildTransmitter(cfg *config.Config, logger *slog.Logger, notifier notifications.Service) keyer.Transmitter {
	logTx := keyer.NewLogTransmitter(logger)
	if cfg == nil || cfg.Notifications.NtfyTopic == "" {
		return logTx
	}
	return keyer.Multi(logTx, keyer.NewNotifyTransmitter(notifier))
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg, false) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run dit doctor for details"),
		)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
