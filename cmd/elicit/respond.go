package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ggoodman/elicit/console"
	"github.com/ggoodman/elicit/remote"
)

func newRespondCmd(a *app) *cobra.Command {
	var tty string

	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Answer JSON-RPC elicitation requests from stdin on the terminal",
		Long: "Serve elicitation/create requests read from stdin, writing responses to stdout.\n" +
			"Questions are asked on the controlling terminal so the RPC streams stay clean.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := os.OpenFile(tty, os.O_RDWR, 0)
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer term.Close()

			cb := console.New(
				console.WithIO(term, term),
				console.WithLogger(a.log),
				console.WithMaxAttempts(a.cfg.MaxAttempts),
			)
			r, err := a.requester(cb)
			if err != nil {
				return err
			}
			return remote.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), r.Callback(), remote.WithLogger(a.log))
		},
	}
	cmd.Flags().StringVar(&tty, "tty", "/dev/tty", "Terminal to prompt on")

	return cmd
}
