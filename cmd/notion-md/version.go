package main

import (
	"github.com/spf13/cobra"

	"github.com/rgonek/notion-md/mcpserver"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = mcpserver.Version

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("notion-md version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
