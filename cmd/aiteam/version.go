package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aiteam and tmux versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "aiteam %s\n", version)
		tv, err := mux.Version()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "tmux: unavailable")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), tv)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
