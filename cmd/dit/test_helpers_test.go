package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dit/internal/config"
	"dit/internal/daemon"
	"dit/internal/logging"
	"dit/internal/notifications"
	"dit/internal/queue"
	"dit/internal/testsupport"
	"dit/internal/workflow"
)

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	return nil
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	configPath string
	addr       string
	hub        *logging.StreamHub
	logger     *slog.Logger
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		configPath: configPath,
	}
}

// startDaemon serves the daemon API over httptest without starting the
// transmission lane, so queued jobs stay queued.
func (env *cliTestEnv) startDaemon(t *testing.T) {
	t.Helper()

	env.hub = logging.NewStreamHub(64)
	logger := logging.TeeLogger(nil, logging.NewStreamHandler(env.hub, nil))
	env.logger = logger
	mgr := workflow.NewManagerWithNotifier(env.cfg, env.store, logger, nil, nopNotifier{})
	d, err := daemon.New(env.cfg, env.store, logger, mgr, env.hub)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)
	env.addr = srv.URL
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--config", env.configPath}, args...)
	if env.addr != "" {
		full = append([]string{"--addr", env.addr}, full...)
	}
	return runCLI(t, full, "")
}

func runCLI(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
