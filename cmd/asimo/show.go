package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/asimo/internal/session"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <history.json>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exchanges, err := session.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(exchanges) == 0 {
				fmt.Fprintln(out, "(no exchanges)")
				return nil
			}
			for i, e := range exchanges {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "You: %s\nAsimo: %s\n", e.User, e.Assistant)
			}
			return nil
		},
	}
}
