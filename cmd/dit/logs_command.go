package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"dit/internal/client"
	"dit/internal/logging"
	"dit/internal/logs"
)

const fileFollowWait = 5 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	var fromFile bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log events",
		Long:  "Show recent daemon log events from the running daemon. With --file, or when the daemon is not running, ditd.log is read from the log directory instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if fromFile {
				return tailLogFile(cmd.Context(), ctx, out, limit, follow)
			}
			err := ctx.withClient(func(cl *client.Client) error {
				return streamDaemonLogs(cmd.Context(), cl, out, limit, follow)
			})
			if errors.Is(err, client.ErrDaemonUnavailable) {
				fmt.Fprintln(cmd.ErrOrStderr(), "daemon not running; reading log file")
				return tailLogFile(cmd.Context(), ctx, out, limit, follow)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "lines", "n", 50, "Number of events to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Wait for new events")
	cmd.Flags().BoolVar(&fromFile, "file", false, "Read ditd.log directly instead of asking the daemon")
	return cmd
}

func streamDaemonLogs(ctx context.Context, cl *client.Client, out io.Writer, limit int, follow bool) error {
	resp, err := cl.Logs(ctx, 0, limit, false)
	if err != nil {
		return err
	}
	if resp.ErrorCode() != "" {
		return responseError(resp)
	}
	next := printLogEvents(out, resp)
	for follow {
		resp, err = cl.Logs(ctx, next, limit, true)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if resp.ErrorCode() != "" {
			return responseError(resp)
		}
		if n := printLogEvents(out, resp); n > next {
			next = n
		}
	}
	return nil
}

func tailLogFile(ctx context.Context, cmdCtx *commandContext, out io.Writer, limit int, follow bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	tailer := logs.NewFileTailer(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	lines, err := tailer.Last(limit)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	for follow {
		lines, err := tailer.Next(ctx, fileFollowWait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// printLogEvents prints each event and returns the cursor for the next fetch.
func printLogEvents(out io.Writer, resp client.Response) uint64 {
	resp.Get("events").ForEach(func(_, event gjson.Result) bool {
		fmt.Fprintln(out, formatLogEvent(event))
		return true
	})
	return resp.Get("next").Uint()
}

func formatLogEvent(event gjson.Result) string {
	var b strings.Builder
	if ts, err := time.Parse(time.RFC3339Nano, event.Get("ts").String()); err == nil {
		b.WriteString(ts.Local().Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(event.Get("level").String()))
	if component := event.Get("component").String(); component != "" {
		b.WriteString(" [" + component + "]")
	}
	if jobID := event.Get("job_id").Int(); jobID > 0 {
		fmt.Fprintf(&b, " job=%d", jobID)
	}
	b.WriteString(" " + event.Get("msg").String())

	fields := event.Get("fields").Map()
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(" " + key + "=" + fields[key].String())
	}
	return b.String()
}
