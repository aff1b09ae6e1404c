// Package watch polls pane content and forwards matched output between
// panes. Capture is non-destructive, so watching is a read-only loop of
// capture, evaluate, maybe forward.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/tmuxai/aiteam/internal/logging"
)

var log = logging.ForComponent(logging.CompWatch)

// Capturer reads the tail of a pane. *tmux.Tmux satisfies it.
type Capturer interface {
	CapturePane(target string, lines int) (string, error)
}

// Sender types text into a pane. *tmux.Tmux satisfies it.
type Sender interface {
	SendKeys(target, text string) error
}

// TimeoutError reports that a condition never matched within the deadline.
// LastOutput carries the final capture so the caller can show what the pane
// actually held.
type TimeoutError struct {
	Target     string
	Timeout    time.Duration
	LastOutput string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting on '%s'", e.Timeout, e.Target)
}

// Condition decides whether captured content satisfies a watch. A condition
// that has Once set refuses to fire a second time regardless of content.
type Condition struct {
	NonEmpty bool           // any non-blank content
	Contains string         // literal substring
	AnyOf    []string       // any of these substrings
	Regex    *regexp.Regexp // pattern match
	Once     bool

	fired bool
}

// Match returns the excerpt that satisfied the condition and whether it
// fired. The excerpt is the matched line (or regexp match) with context
// handled by the caller.
func (c *Condition) Match(content string) (string, bool) {
	if c.Once && c.fired {
		return "", false
	}
	excerpt, ok := c.match(content)
	if ok {
		c.fired = true
	}
	return excerpt, ok
}

func (c *Condition) match(content string) (string, bool) {
	if c.Regex != nil {
		if m := c.Regex.FindString(content); m != "" || c.Regex.MatchString(content) {
			return m, true
		}
		return "", false
	}
	if c.Contains != "" {
		if strings.Contains(content, c.Contains) {
			return c.Contains, true
		}
		return "", false
	}
	if len(c.AnyOf) > 0 {
		for _, s := range c.AnyOf {
			if strings.Contains(content, s) {
				return s, true
			}
		}
		return "", false
	}
	if c.NonEmpty {
		if strings.TrimSpace(content) != "" {
			return "", true
		}
		return "", false
	}
	return "", false
}

// Options tune one watch loop.
type Options struct {
	Interval     time.Duration // poll period (default 1s)
	Timeout      time.Duration // overall deadline (default 120s)
	CaptureLines int           // pane tail size per poll (default 200)
	ContextLines int           // lines around a match in the forwarded excerpt
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Minute
	}
	if o.CaptureLines <= 0 {
		o.CaptureLines = 200
	}
}

// Wait polls target until cond matches, returning the excerpt with
// surrounding context. Capture errors end the wait immediately; they
// indicate a dead pane, not a pending one.
func Wait(ctx context.Context, cap Capturer, target string, cond *Condition, opts Options) (string, error) {
	opts.defaults()

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var last string
	for {
		content, err := cap.CapturePane(target, opts.CaptureLines)
		if err != nil {
			return "", err
		}
		last = content
		if excerpt, ok := cond.Match(content); ok {
			return withContext(content, excerpt, opts.ContextLines), nil
		}
		if time.Now().After(deadline) {
			return "", &TimeoutError{Target: target, Timeout: opts.Timeout, LastOutput: last}
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// withContext expands an excerpt to the surrounding lines of the capture.
// An empty excerpt (NonEmpty condition) returns the full content.
func withContext(content, excerpt string, contextLines int) string {
	if excerpt == "" {
		return content
	}
	if contextLines <= 0 {
		return excerpt
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, excerpt) {
			lo := i - contextLines
			if lo < 0 {
				lo = 0
			}
			hi := i + contextLines + 1
			if hi > len(lines) {
				hi = len(lines)
			}
			return strings.Join(lines[lo:hi], "\n")
		}
	}
	return excerpt
}

// Relay watches src until cond matches and forwards the matched excerpt to
// dst, prefixed with caption when given.
//
// Unless alreadyVisible is set, a baseline capture is taken first and the
// condition only fires on content beyond the baseline: the match count in
// the current capture must exceed the count in the baseline. This keeps old
// scrollback from triggering an immediate forward.
//
// With cond.Once the relay returns after the first forward. Without it the
// relay keeps watching for further new matches (the baseline advances past
// each forward) until the deadline; reaching the deadline after at least
// one forward is success.
func Relay(ctx context.Context, mux interface {
	Capturer
	Sender
}, src, dst string, cond *Condition, caption string, alreadyVisible bool, opts Options) error {
	opts.defaults()

	var baseline string
	if !alreadyVisible {
		b, err := mux.CapturePane(src, opts.CaptureLines)
		if err != nil {
			return err
		}
		baseline = b
	}

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	forwarded := 0
	var last string
	for {
		content, err := mux.CapturePane(src, opts.CaptureLines)
		if err != nil {
			return err
		}
		last = content

		if excerpt, ok := relayMatch(cond, content, baseline, alreadyVisible); ok {
			body := withContext(content, excerpt, opts.ContextLines)
			if caption != "" {
				body = caption + "\n" + body
			}
			if err := mux.SendKeys(dst, body); err != nil {
				return err
			}
			forwarded++
			log.Debug("relay_forwarded",
				slog.String("from", src), slog.String("to", dst), slog.Int("count", forwarded))
			if cond.Once {
				return nil
			}
			// Only content beyond this capture counts as a new match.
			baseline = content
			alreadyVisible = false
		}

		if time.Now().After(deadline) {
			if forwarded > 0 {
				return nil
			}
			return &TimeoutError{Target: src, Timeout: opts.Timeout, LastOutput: last}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// relayMatch applies the baseline rule: without alreadyVisible, the match
// must be new relative to the baseline capture.
func relayMatch(cond *Condition, content, baseline string, alreadyVisible bool) (string, bool) {
	excerpt, ok := cond.match(content)
	if !ok {
		return "", false
	}
	if alreadyVisible {
		return excerpt, true
	}
	probe := excerpt
	if probe == "" {
		// NonEmpty condition: compare whole content against baseline.
		if strings.TrimSpace(content) != strings.TrimSpace(baseline) {
			return excerpt, true
		}
		return "", false
	}
	if strings.Count(content, probe) > strings.Count(baseline, probe) {
		return excerpt, true
	}
	return "", false
}

// Handoff captures the last lines of src once and types them into dst,
// prefixed with caption when given.
func Handoff(mux interface {
	Capturer
	Sender
}, src, dst string, lines int, caption string) error {
	if lines <= 0 {
		lines = 40
	}
	content, err := mux.CapturePane(src, lines)
	if err != nil {
		return err
	}
	body := content
	if caption != "" {
		body = caption + "\n" + body
	}
	if err := mux.SendKeys(dst, body); err != nil {
		return err
	}
	log.Debug("handoff_forwarded",
		slog.String("from", src), slog.String("to", dst), slog.Int("lines", lines))
	return nil
}
