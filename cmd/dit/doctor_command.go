package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dit/internal/client"
	"dit/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks against the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			daemonRunning := false
			sectionHeader(out, "Daemon", colorize)
			if cl, err := ctx.newClient(); err != nil {
				fmt.Fprintln(out, checkLine("ditd", checkError, err.Error(), colorize))
			} else if resp, err := cl.Ping(cmd.Context()); err == nil && resp.OK() {
				daemonRunning = true
				fmt.Fprintln(out, checkLine("ditd", checkOK, "Running", colorize))
			} else if err != nil && errors.Is(err, client.ErrDaemonUnavailable) {
				fmt.Fprintln(out, checkLine("ditd", checkInfo, "Not running", colorize))
			} else if err != nil {
				fmt.Fprintln(out, checkLine("ditd", checkWarn, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, checkLine("ditd", checkWarn, "ping rejected: "+resp.ErrorCode(), colorize))
			}
			fmt.Fprintln(out)

			sectionHeader(out, "Preflight", colorize)
			results := preflight.RunAll(cmd.Context(), cfg, daemonRunning)
			for _, result := range results {
				kind := checkOK
				if !result.Passed {
					kind = checkError
				}
				fmt.Fprintln(out, checkLine(result.Name, kind, result.Detail, colorize))
			}
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, checkLine("ntfy", checkInfo, "Disabled", colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}
