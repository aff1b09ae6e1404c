package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addWorker string
	addLayout string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Split a new worker pane into the session",
	RunE:  runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addWorker, "worker", "", "worker spec NAME=COMMAND")
	f.StringVar(&addLayout, "layout", "vertical", "split layout: horizontal or vertical")
	addCmd.MarkFlagRequired("worker")
	rootCmd.AddCommand(addCmd)
}

// parseWorker splits a NAME=COMMAND spec. The command may itself contain
// '=' so only the first one splits.
func parseWorker(spec string) (name, command string, err error) {
	name, command, ok := strings.Cut(spec, "=")
	if !ok || name == "" || command == "" {
		return "", "", fmt.Errorf("invalid --worker %q: want NAME=COMMAND", spec)
	}
	return name, command, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	name, command, err := parseWorker(addWorker)
	if err != nil {
		return err
	}
	horizontal, err := splitHorizontal(addLayout)
	if err != nil {
		return err
	}

	paneID, err := mux.SplitWindow(sess, "", horizontal, command)
	if err != nil {
		return err
	}
	if err := mux.SetPaneTitle(paneID, name); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
