package main

import (
	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Kill the session and every agent in it",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		return mux.KillSession(sess)
	},
}

func init() {
	rootCmd.AddCommand(killCmd)
}
