package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/asimo/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(app.VersionString())
		},
	}
}
