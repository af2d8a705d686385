package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of chromint.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("chromint\n")
			cmd.Printf("  Version: %s\n", version)
			cmd.Printf("  Commit:  %s\n", commit)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}
