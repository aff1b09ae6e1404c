package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/watch"
)

var (
	relayFrom           string
	relayTo             string
	relayRegex          string
	relayContains       string
	relayAnyOf          []string
	relayOnce           bool
	relayAlreadyVisible bool
	relayCaption        string
	relayTimeout        time.Duration
	relayInterval       time.Duration
	relayContext        int
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Watch one pane and forward matching output to another",
	Long: `Polls the source pane until its content matches and types the match
into the destination pane. Without --already-visible, text that was on
screen when the relay started does not count; only new output fires.`,
	RunE: runRelay,
}

func init() {
	f := relayCmd.Flags()
	f.StringVar(&relayFrom, "from", "", "source pane")
	f.StringVar(&relayTo, "to", "", "destination pane")
	f.StringVar(&relayRegex, "regex", "", "fire when this pattern appears in the source")
	f.StringVar(&relayContains, "contains", "", "fire when this literal text appears in the source")
	f.StringSliceVar(&relayAnyOf, "any-of", nil, "fire when any of these literal texts appears in the source")
	f.BoolVar(&relayOnce, "once", false, "stop after the first forward")
	f.BoolVar(&relayAlreadyVisible, "already-visible", false, "let text already on screen fire the relay")
	f.StringVar(&relayCaption, "caption", "", "line to prepend to the forwarded text")
	f.DurationVar(&relayTimeout, "timeout", 0, "give up after this long (default: configured timeout)")
	f.DurationVar(&relayInterval, "interval", 0, "poll period (default: configured interval)")
	f.IntVar(&relayContext, "context", -1, "lines of context around the match (default: configured)")
	relayCmd.MarkFlagRequired("from")
	relayCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	src, err := resolvePane(sess, relayFrom)
	if err != nil {
		return err
	}
	dst, err := resolvePane(sess, relayTo)
	if err != nil {
		return err
	}

	cond := &watch.Condition{Once: relayOnce}
	switch {
	case relayRegex != "":
		re, err := regexp.Compile(relayRegex)
		if err != nil {
			return fmt.Errorf("invalid --regex: %w", err)
		}
		cond.Regex = re
	case relayContains != "":
		cond.Contains = relayContains
	case len(relayAnyOf) > 0:
		cond.AnyOf = relayAnyOf
	default:
		return fmt.Errorf("relay needs --regex, --contains or --any-of")
	}

	opts := watchOptions()
	if relayTimeout > 0 {
		opts.Timeout = relayTimeout
	}
	if relayInterval > 0 {
		opts.Interval = relayInterval
	}
	if relayContext >= 0 {
		opts.ContextLines = relayContext
	}

	return watch.Relay(cmd.Context(), mux, src.ID, dst.ID, cond, relayCaption, relayAlreadyVisible, opts)
}

// watchOptions builds poll options from the configuration.
func watchOptions() watch.Options {
	return watch.Options{
		Interval:     cfg.PollInterval(),
		Timeout:      cfg.PollTimeout(),
		CaptureLines: cfg.Watch.CaptureLines,
		ContextLines: cfg.Watch.ContextLines,
	}
}
