package preflight

import (
	"context"

	"dit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Set daemonRunning when a ditd already owns the bind address so the
// listen check is not reported as a conflict.
func RunAll(ctx context.Context, cfg *config.Config, daemonRunning bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectory("State directory", cfg.Paths.StateDir),
		CheckDirectory("Log directory", cfg.Paths.LogDir),
	}

	if daemonRunning {
		results = append(results, Result{Name: "API bind", Passed: true, Detail: cfg.Paths.APIBind + " (served by running daemon)"})
	} else {
		results = append(results, CheckAPIBind(cfg.Paths.APIBind))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// Failed returns only the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
