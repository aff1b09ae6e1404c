// Package tmux wraps the tmux command-line interface for aiteam.
// All session/pane mutations funnel through tmux's own primitives; this
// package adds timeouts, typed errors, and targeted error hints.
package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tmuxai/aiteam/internal/logging"
)

var log = logging.ForComponent(logging.CompTmux)

// Common errors detected from tmux stderr.
var (
	ErrNoServer           = errors.New("no tmux server running")
	ErrSessionExists      = errors.New("session already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSessionName = errors.New("invalid session name")
	ErrTimeout            = errors.New("tmux command timed out")
)

// validSessionNameRe validates session names to prevent targets that tmux
// silently misparses (dots and colons are target syntax).
var validSessionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// windowConfusionRe matches the stderr tmux emits when a pane-style numeric
// suffix was interpreted as a window index.
var windowConfusionRe = regexp.MustCompile(`can't find window: (\d+)`)

// Error is the single error kind for raw tmux failures. It carries the raw
// diagnostic text and the offending target so callers can decide how to react,
// and an optional hint when the failure matches a known confusion pattern.
type Error struct {
	Command string // tmux subcommand, e.g. "capture-pane"
	Target  string // the -t argument, if any
	Stderr  string // raw stderr from tmux
	Hint    string // non-empty only for the window/pane-index confusion pattern
	err     error  // sentinel or underlying exec error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tmux %s: %s", e.Command, e.Stderr)
	if e.Stderr == "" && e.err != nil {
		msg = fmt.Sprintf("tmux %s: %v", e.Command, e.err)
	}
	if e.Hint != "" {
		msg += "\nhint:\n" + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() error { return e.err }

// Pane describes one pane of a session window.
type Pane struct {
	ID    string // tmux pane id, e.g. "%5"
	Index int    // pane index within the window
	Title string // pane title, aiteam's role registry
}

// runFunc executes one tmux invocation. Swappable for tests.
type runFunc func(ctx context.Context, args ...string) (stdout, stderr string, err error)

func execTmux(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Tmux wraps tmux operations. The zero value is not usable; use New.
type Tmux struct {
	timeout  time.Duration // per-command deadline
	debounce time.Duration // delay between literal paste and Enter
	run      runFunc
}

// New creates a Tmux wrapper with default timeouts.
func New() *Tmux {
	return &Tmux{
		timeout:  10 * time.Second,
		debounce: 100 * time.Millisecond,
		run:      execTmux,
	}
}

// SetDebounce overrides the paste-to-Enter delay used by SendKeys.
func (t *Tmux) SetDebounce(d time.Duration) {
	if d >= 0 {
		t.debounce = d
	}
}

// exec runs a tmux command, wrapping failures in *Error with hint repair.
func (t *Tmux) exec(args ...string) (string, error) {
	return t.execInternal(true, args...)
}

// execNoHint runs a tmux command without attempting hint repair on failure.
// Used from inside the repair path itself to avoid recursion.
func (t *Tmux) execNoHint(args ...string) (string, error) {
	return t.execInternal(false, args...)
}

func (t *Tmux) execInternal(repair bool, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	stdout, stderr, err := t.run(ctx, args...)
	if err == nil {
		return strings.TrimSpace(stdout), nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("tmux %s: %w", args[0], ErrTimeout)
	}
	return "", t.wrapError(err, stderr, args, repair)
}

// wrapError converts a raw tmux failure into *Error, classifying well-known
// stderr patterns and, for the window/pane-index confusion pattern only,
// attaching a corrected-target hint.
func (t *Tmux) wrapError(err error, stderr string, args []string, repair bool) error {
	stderr = strings.TrimSpace(stderr)
	target := targetArg(args)

	e := &Error{
		Command: args[0],
		Target:  target,
		Stderr:  stderr,
		err:     err,
	}

	switch {
	case strings.Contains(stderr, "no server running"),
		strings.Contains(stderr, "error connecting to"),
		strings.Contains(stderr, "server exited unexpectedly"):
		e.err = ErrNoServer
	case strings.Contains(stderr, "duplicate session"):
		e.err = ErrSessionExists
	case strings.Contains(stderr, "session not found"),
		strings.Contains(stderr, "can't find session"):
		e.err = ErrSessionNotFound
	}

	if repair {
		e.Hint = t.repairHint(target, stderr)
	}
	return e
}

// targetArg extracts the value following the -t flag, if any.
func targetArg(args []string) string {
	for i, a := range args {
		if a == "-t" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// repairHint detects the case where a selector like "mysess:5" made tmux look
// for window 5 instead of pane 5 of window 0. When pane 5 actually exists in
// window 0, it suggests the window-qualified address and the aiteam shorthand.
// Every other failure pattern gets no hint.
func (t *Tmux) repairHint(target, stderr string) string {
	m := windowConfusionRe.FindStringSubmatch(stderr)
	if m == nil || target == "" {
		return ""
	}
	idx := m[1]

	colon := strings.LastIndex(target, ":")
	if colon <= 0 || target[colon+1:] != idx {
		return ""
	}
	session := target[:colon]

	// Confirm the pane index exists in window 0 before suggesting it.
	out, err := t.execNoHint("list-panes", "-t", session+":0", "-F", "#{pane_index}")
	if err != nil {
		return ""
	}
	found := false
	for _, line := range strings.Fields(out) {
		if line == idx {
			found = true
			break
		}
	}
	if !found {
		return ""
	}

	return fmt.Sprintf(
		"Invalid target '%s'. Did you mean '%s:0.%s' (window 0, pane %s)? "+
			"The aiteam shorthand for that pane is 'codex:%s'.",
		target, session, idx, idx, idx)
}

// Version returns the tmux version string (e.g. "tmux 3.4").
func (t *Tmux) Version() (string, error) {
	return t.exec("-V")
}

// NewSession creates a new detached session with a single pane.
func (t *Tmux) NewSession(name, workDir string) error {
	if name == "" || !validSessionNameRe.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidSessionName, name, validSessionNameRe.String())
	}
	args := []string{"new-session", "-d", "-s", name}
	if workDir != "" {
		args = append(args, "-c", workDir)
	}
	_, err := t.exec(args...)
	if err == nil {
		log.Debug("session_created", slog.String("session", name))
	}
	return err
}

// HasSession checks if a session exists (exact match).
// Uses "=" prefix so "demo" does not match "demo-2".
func (t *Tmux) HasSession(name string) (bool, error) {
	_, err := t.exec("has-session", "-t", "="+name)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNoServer) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListSessions returns all session names. No server means no sessions.
func (t *Tmux) ListSessions() ([]string, error) {
	out, err := t.exec("list-sessions", "-F", "#{session_name}")
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// KillSession terminates a session.
func (t *Tmux) KillSession(name string) error {
	_, err := t.exec("kill-session", "-t", name)
	return err
}

// SplitWindow splits the session's window and returns the new pane's id.
// When horizontal is true the panes sit side by side. An optional command
// runs as the pane's initial process; empty command starts a shell.
func (t *Tmux) SplitWindow(session, workDir string, horizontal bool, command string) (string, error) {
	direction := "-v"
	if horizontal {
		direction = "-h"
	}
	args := []string{"split-window", direction, "-t", session + ":", "-P", "-F", "#{pane_id}"}
	if workDir != "" {
		args = append(args, "-c", workDir)
	}
	if command != "" {
		args = append(args, command)
	}
	out, err := t.exec(args...)
	if err != nil {
		return "", err
	}
	paneID := strings.TrimSpace(out)
	log.Debug("pane_split", slog.String("session", session), slog.String("pane", paneID))
	return paneID, nil
}

// ListPanes returns all panes of the session's window with index and title.
func (t *Tmux) ListPanes(session string) ([]Pane, error) {
	out, err := t.exec("list-panes", "-t", session, "-F", "#{pane_id}\t#{pane_index}\t#{pane_title}")
	if err != nil {
		return nil, err
	}
	var panes []Pane
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{ID: parts[0], Index: index, Title: parts[2]})
	}
	return panes, nil
}

// SessionOption reads a session-scoped option (e.g. "@aiteam_next_codex_id").
// An unset option yields "" without error.
func (t *Tmux) SessionOption(session, name string) (string, error) {
	return t.exec("show-options", "-qv", "-t", session, name)
}

// SetSessionOption writes a session-scoped option.
func (t *Tmux) SetSessionOption(session, name, value string) error {
	_, err := t.exec("set-option", "-t", session, name, value)
	return err
}

// SetPaneTitle sets a pane's title, which aiteam uses as its role registry.
func (t *Tmux) SetPaneTitle(target, title string) error {
	_, err := t.exec("select-pane", "-t", target, "-T", title)
	return err
}

// CapturePane captures the last N lines of a pane's rendered content.
// lines <= 0 captures only the visible screen. Capture is non-destructive;
// repeated captures of unchanged output return the same text.
func (t *Tmux) CapturePane(target string, lines int) (string, error) {
	args := []string{"capture-pane", "-p", "-t", target}
	if lines > 0 {
		args = append(args, "-S", fmt.Sprintf("-%d", lines))
	}
	return t.exec(args...)
}

// SendKeys sends text to a pane in literal mode and presses Enter.
// Enter goes as a separate command after a short debounce so the pasted
// text is fully processed before submission.
func (t *Tmux) SendKeys(target, text string) error {
	if _, err := t.exec("send-keys", "-t", target, "-l", text); err != nil {
		return err
	}
	if t.debounce > 0 {
		time.Sleep(t.debounce)
	}
	_, err := t.exec("send-keys", "-t", target, "Enter")
	return err
}

// SendKeysRaw sends a key name (e.g. "C-c") without appending Enter.
func (t *Tmux) SendKeysRaw(target, keys string) error {
	_, err := t.exec("send-keys", "-t", target, keys)
	return err
}
