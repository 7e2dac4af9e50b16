package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"dit/internal/config"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func containsWord(haystack, word string) bool {
	for _, field := range strings.FieldsFunc(haystack, func(r rune) bool {
		return r == ' ' || r == '│' || r == '\n'
	}) {
		if field == word {
			return true
		}
	}
	return false
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	target := filepath.Join(base, "dit", "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}
	out, err = runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "")
	if err != nil {
		t.Fatalf("config init overwrite: %v", err)
	}
	requireContains(t, out, "Previous configuration saved to "+target+".bak")

	out, err = runCLI(t, []string{"--config", target, "config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+target)
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[keyer]\nmin_speed = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, []string{"--config", path, "config", "validate"}, ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDoctorWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addr = "127.0.0.1:1"

	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "State directory:")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "Disabled")
}

func TestDoctorReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addr = "127.0.0.1:1"
	if err := os.RemoveAll(env.cfg.Paths.LogDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.cfg.Paths.LogDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := env.run(t, "doctor")
	if err == nil {
		t.Fatal("expected doctor failure when log dir is a file")
	}
}

func TestNotifyTestDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "notify", "test")
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
