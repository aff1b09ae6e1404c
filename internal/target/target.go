// Package target maps aiteam selectors to concrete tmux panes.
//
// Panes carry their role in the pane title. Plain roles ("claude", "sink")
// use the title verbatim; worker Codex panes are titled "codex#<id>:<name>"
// and addressed as "codex:<id>"; the reserved error-analysis pane is titled
// "codex#err<N>:error" and addressed as "codex:err<N>".
package target

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmuxai/aiteam/internal/tmux"
)

const (
	// CodexRole is the selector role for worker Codex panes.
	CodexRole = "codex"

	// errTitlePrefix and errTitleSuffix frame an error-analysis pane title.
	errTitlePrefix = "codex#err"
	errTitleSuffix = ":error"
)

var (
	selectorRe   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)(?::([a-zA-Z0-9_-]+))?$`)
	codexTitleRe = regexp.MustCompile(`^codex#(\d+):`)
	errTitleRe   = regexp.MustCompile(`^codex#err(\d+):error$`)
)

// Selector is a parsed pane address.
type Selector struct {
	Role string // "claude", "codex", "sink", ...
	ID   string // optional: numeric for workers, "errN" for the error pane
}

func (s Selector) String() string {
	if s.ID == "" {
		return s.Role
	}
	return s.Role + ":" + s.ID
}

// UnresolvedError reports a selector that matched no pane (or too many).
type UnresolvedError struct {
	Selector Selector
	Reason   string
}

func (e *UnresolvedError) Error() string { return e.Reason }

// Parse validates and splits a selector. It never consults tmux, so a
// malformed selector fails even with no server running.
func Parse(raw string) (Selector, error) {
	m := selectorRe.FindStringSubmatch(raw)
	if m == nil {
		return Selector{}, fmt.Errorf("invalid target %q: want 'role' or 'role:id'", raw)
	}
	return Selector{Role: m[1], ID: m[2]}, nil
}

// Resolve maps a selector to the pane it addresses. The returned pane's ID
// is a stable tmux pane id usable as a -t argument.
func Resolve(sel Selector, panes []tmux.Pane) (tmux.Pane, error) {
	var matches []tmux.Pane
	for _, p := range panes {
		if selects(sel, p.Title) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return tmux.Pane{}, &UnresolvedError{Selector: sel, Reason: notFoundMessage(sel)}
	default:
		return tmux.Pane{}, &UnresolvedError{
			Selector: sel,
			Reason:   fmt.Sprintf("target '%s' is ambiguous: %d panes match", sel, len(matches)),
		}
	}
}

func notFoundMessage(sel Selector) string {
	if sel.Role == CodexRole && sel.ID != "" {
		return fmt.Sprintf("No Codex pane with id '%s'", sel.ID)
	}
	if sel.ID != "" {
		return fmt.Sprintf("no such %s pane with id '%s'", sel.Role, sel.ID)
	}
	return fmt.Sprintf("no pane with role '%s'", sel.Role)
}

// selects reports whether a pane title satisfies a selector.
func selects(sel Selector, title string) bool {
	if sel.Role != CodexRole {
		if sel.ID == "" {
			return title == sel.Role
		}
		return title == sel.Role+"#"+sel.ID || strings.HasPrefix(title, sel.Role+"#"+sel.ID+":")
	}

	// codex with no id addresses any worker pane (not the error pane).
	if sel.ID == "" {
		return codexTitleRe.MatchString(title)
	}
	if strings.HasPrefix(sel.ID, "err") {
		return title == errTitlePrefix+strings.TrimPrefix(sel.ID, "err")+errTitleSuffix
	}
	return strings.HasPrefix(title, "codex#"+sel.ID+":")
}

// WorkerTitle builds the title for a worker Codex pane.
func WorkerTitle(id int, name string) string {
	return fmt.Sprintf("codex#%d:%s", id, name)
}

// ErrorPaneTitle builds the title for an error-analysis pane.
func ErrorPaneTitle(id int) string {
	return fmt.Sprintf("%s%d%s", errTitlePrefix, id, errTitleSuffix)
}

// OptionStore persists per-session id counters in the multiplexer's own
// session options, so allocation state stays externally observable and
// survives pane death. *tmux.Tmux satisfies it.
type OptionStore interface {
	SessionOption(session, name string) (string, error)
	SetSessionOption(session, name, value string) error
}

const (
	nextCodexIDOption = "@aiteam_next_codex_id"
	nextErrorIDOption = "@aiteam_next_error_id"
)

// AllocateCodexID hands out the next worker id (starting at 1) and advances
// the stored counter. Ids grow monotonically for the session's lifetime: a
// dead worker's id is never handed out again, because the counter outlives
// the pane. Sessions from before the counter existed fall back to the
// highest id still visible in pane titles.
func AllocateCodexID(store OptionStore, session string, panes []tmux.Pane) (int, error) {
	return allocateID(store, session, nextCodexIDOption, maxCodexID(panes))
}

// AllocateErrorID is AllocateCodexID for the error-pane id space.
func AllocateErrorID(store OptionStore, session string, panes []tmux.Pane) (int, error) {
	return allocateID(store, session, nextErrorIDOption, maxErrorID(panes))
}

func allocateID(store OptionStore, session, option string, liveMax int) (int, error) {
	id := liveMax + 1
	stored, err := store.SessionOption(session, option)
	if err != nil {
		return 0, err
	}
	if n, perr := strconv.Atoi(strings.TrimSpace(stored)); perr == nil && n > id {
		id = n
	}
	if err := store.SetSessionOption(session, option, strconv.Itoa(id+1)); err != nil {
		return 0, err
	}
	return id, nil
}

// maxCodexID is the highest worker id among live pane titles.
func maxCodexID(panes []tmux.Pane) int {
	max := 0
	for _, p := range panes {
		if m := codexTitleRe.FindStringSubmatch(p.Title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// maxErrorID is the highest error-pane id among live pane titles.
func maxErrorID(panes []tmux.Pane) int {
	max := 0
	for _, p := range panes {
		if m := errTitleRe.FindStringSubmatch(p.Title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// HasErrorPane reports whether the session already carries an
// error-analysis pane.
func HasErrorPane(panes []tmux.Pane) bool {
	for _, p := range panes {
		if strings.HasPrefix(p.Title, errTitlePrefix) && strings.HasSuffix(p.Title, errTitleSuffix) {
			return true
		}
	}
	return false
}
