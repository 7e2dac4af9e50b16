package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dit/internal/api"
	"dit/internal/client"
)

func newRemoteCommands(ctx *commandContext) []*cobra.Command {
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Ping(cmd.Context())
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show keyer status (busy, queue length, last event, speed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Status(cmd.Context())
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}

	var sendSpeed int
	sendCmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Queue text for transmission",
		Long:  "Queue text for transmission by the daemon. With no arguments the text is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := commandText(cmd, args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(strings.ReplaceAll(text, "\r", "")) == "" {
				return errors.New("empty text")
			}
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Send(cmd.Context(), text, sendSpeed)
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}
	sendCmd.Flags().IntVarP(&sendSpeed, "speed", "s", 0, "Words per minute (defaults to the global speed)")

	speedCmd := &cobra.Command{
		Use:   "speed [wpm]",
		Short: "Show or set the global speed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value *string
			if len(args) == 1 {
				value = &args[0]
			}
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Speed(cmd.Context(), value)
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}

	return []*cobra.Command{pingCmd, statusCmd, sendCmd, speedCmd}
}

// printResponse writes the daemon's JSON and turns ok:false into an error.
func printResponse(cmd *cobra.Command, resp client.Response) error {
	out := cmd.OutOrStdout()
	if shouldColorize(out) {
		fmt.Fprint(out, resp.Color())
	} else {
		fmt.Fprint(out, resp.Pretty())
	}
	if resp.OK() {
		return nil
	}
	return responseError(resp)
}

func responseError(resp client.Response) error {
	detail := resp.Get("detail").String()
	var msg string
	switch resp.ErrorCode() {
	case api.ErrCodeEmpty:
		msg = "empty text"
	case api.ErrCodeTooLong:
		msg = "text too long"
	case api.ErrCodeBadSpeed:
		msg = "speed must be an integer"
	case api.ErrCodeUnauthorized:
		msg = "unauthorized; set paths.api_token or DIT_API_TOKEN"
	case api.ErrCodeRateLimited:
		msg = "rate limited; retry shortly"
	case "":
		msg = fmt.Sprintf("daemon returned status %d", resp.StatusCode)
	default:
		msg = resp.ErrorCode()
	}
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return errors.New(msg)
}
