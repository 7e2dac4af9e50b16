package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dit/internal/logging"
	"dit/internal/queue"
	"dit/internal/testsupport"
)

func TestPingAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	env.startDaemon(t)

	out, err := env.run(t, "ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	requireContains(t, out, `"ok": true`)

	out, err = env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, `"busy": false`)
	requireContains(t, out, `"state": "idle"`)
}

func TestSendQueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)
	env.startDaemon(t)

	out, err := env.run(t, "send", "--speed", "22", "CQ", "CQ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	requireContains(t, out, `"accepted": true`)
	requireContains(t, out, `"speed": 22`)

	jobs, err := env.store.List(context.Background(), queue.StatusQueued)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Text != "CQ CQ" || jobs[0].Code != "-.-. --.- / -.-. --.-" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestSendEmptyText(t *testing.T) {
	env := setupCLITestEnv(t)
	env.startDaemon(t)

	_, err := env.run(t, "send", "  ")
	if err == nil || err.Error() != "empty text" {
		t.Fatalf("expected empty text error, got %v", err)
	}
}

func TestSendTooLong(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Keyer.MaxTextLength = 3
	writeTestConfig(t, env.configPath, env.cfg)
	env.startDaemon(t)

	out, err := env.run(t, "send", "ABCDEF")
	if err == nil {
		t.Fatal("expected too long error")
	}
	requireContains(t, out, `"error": "too_long"`)
	requireContains(t, err.Error(), "text too long")
}

func TestSpeedCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.startDaemon(t)

	out, err := env.run(t, "speed", "25")
	if err != nil {
		t.Fatalf("speed set: %v", err)
	}
	requireContains(t, out, `"speed": 25`)

	out, err = env.run(t, "speed")
	if err != nil {
		t.Fatalf("speed get: %v", err)
	}
	requireContains(t, out, `"speed": 25`)

	_, err = env.run(t, "speed", "fast")
	if err == nil {
		t.Fatal("expected bad speed error")
	}
	requireContains(t, err.Error(), "speed must be an integer")
}

func TestRemoteUnauthorized(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAPIToken("server-secret"))
	env.startDaemon(t)
	clientCfg := *env.cfg
	clientCfg.Paths.APIToken = "wrong"
	writeTestConfig(t, env.configPath, &clientCfg)

	_, err := env.run(t, "status")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	requireContains(t, err.Error(), "unauthorized")
}

func TestRemoteDaemonDown(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addr = "127.0.0.1:1"

	_, err := env.run(t, "ping")
	if err == nil {
		t.Fatal("expected daemon unavailable error")
	}
	requireContains(t, err.Error(), "not running")
}

func TestLogsTail(t *testing.T) {
	env := setupCLITestEnv(t)
	env.startDaemon(t)

	env.logger.Info("cli test event", "component", "cli-test")
	out, err := env.run(t, "logs", "-n", "10")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "[cli-test] cli test event")
}

func TestLogsFallsBackToFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addr = "127.0.0.1:1"
	logPath := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := env.run(t, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "daemon not running")
	requireContains(t, out, "two\nthree\n")

	out, err = env.run(t, "logs", "--file", "-n", "1")
	if err != nil {
		t.Fatalf("logs --file: %v", err)
	}
	if out != "three\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
