package main

import (
	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/watch"
)

var (
	handoffFrom    string
	handoffTo      string
	handoffLines   int
	handoffCaption string
)

var handoffCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Capture a pane's tail once and type it into another pane",
	RunE:  runHandoff,
}

func init() {
	f := handoffCmd.Flags()
	f.StringVar(&handoffFrom, "from", "", "source pane")
	f.StringVar(&handoffTo, "to", "", "destination pane")
	f.IntVar(&handoffLines, "lines", 40, "how many trailing lines to hand off")
	f.StringVar(&handoffCaption, "caption", "", "line to prepend to the handed-off text")
	handoffCmd.MarkFlagRequired("from")
	handoffCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(handoffCmd)
}

func runHandoff(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	src, err := resolvePane(sess, handoffFrom)
	if err != nil {
		return err
	}
	dst, err := resolvePane(sess, handoffTo)
	if err != nil {
		return err
	}
	return watch.Handoff(mux, src.ID, dst.ID, handoffLines, handoffCaption)
}
