package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dit/internal/api"
	"dit/internal/keyer"
	"dit/internal/morse"
	"dit/internal/view"
)

func newEncodeCommand() *cobra.Command {
	var asHTML, asJSON, asCode bool

	cmd := &cobra.Command{
		Use:         "encode [text...]",
		Short:       "Render text as Morse code locally",
		Long:        "Render text as Morse code without contacting the daemon. With no arguments the text is read from stdin.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if countTrue(asHTML, asJSON, asCode) > 1 {
				return errors.New("specify only one of --html, --json or --code")
			}
			text, err := commandText(cmd, args)
			if err != nil {
				return err
			}
			text = strings.ReplaceAll(text, "\r", "")
			t := morse.Render(text)

			out := cmd.OutOrStdout()
			switch {
			case asHTML:
				fmt.Fprintln(out, view.HTML(t))
			case asJSON:
				return writeJSON(cmd, api.FromTranscription(text, t))
			case asCode:
				fmt.Fprintln(out, keyer.CodeOf(t))
			default:
				fmt.Fprint(out, view.Terminal(t, shouldColorize(out)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Print HTML rows as served to the web UI")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the render response as JSON")
	cmd.Flags().BoolVar(&asCode, "code", false, "Print only the Morse code line")
	return cmd
}

// commandText joins args, or reads stdin when none are given.
func commandText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func countTrue(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
