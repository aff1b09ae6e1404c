package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/watch"
)

var (
	captureFrom    string
	captureLines   int
	captureWaitFor string
	captureTimeout time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Print the last lines of a pane",
	RunE:  runCapture,
}

func init() {
	f := captureCmd.Flags()
	f.StringVar(&captureFrom, "from", "", "source pane (role, codex:<id> or codex:err<n>)")
	f.IntVar(&captureLines, "lines", 0, "how many trailing lines to capture (default: the configured capture size)")
	f.StringVar(&captureWaitFor, "wait-for", "", "block until this pattern appears before capturing")
	f.DurationVar(&captureTimeout, "timeout", 0, "give up waiting after this long (default: configured timeout)")
	captureCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	pane, err := resolvePane(sess, captureFrom)
	if err != nil {
		return err
	}
	lines := captureLines
	if lines <= 0 {
		lines = cfg.Watch.CaptureLines
	}

	if captureWaitFor != "" {
		re, err := regexp.Compile(captureWaitFor)
		if err != nil {
			return fmt.Errorf("invalid --wait-for: %w", err)
		}
		opts := watchOptions()
		opts.CaptureLines = lines
		if captureTimeout > 0 {
			opts.Timeout = captureTimeout
		}
		if _, err := watch.Wait(cmd.Context(), mux, pane.ID, &watch.Condition{Regex: re}, opts); err != nil {
			return err
		}
	}

	content, err := mux.CapturePane(pane.ID, lines)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}
