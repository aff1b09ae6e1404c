// Package arbiter spawns at most one error-analysis Codex pane per session
// when a command fails. Several aiteam processes can fail at the same time
// in the same session; a per-session advisory file lock plus a re-check
// under the lock keeps the pane singular.
package arbiter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/tmuxai/aiteam/internal/logging"
	"github.com/tmuxai/aiteam/internal/target"
	"github.com/tmuxai/aiteam/internal/tmux"
)

var log = logging.ForComponent(logging.CompArbiter)

// Environment toggles. A variable counts as set when non-empty and not "0".
const (
	EnvEnable  = "AITEAM_ENABLE_ERROR_CODEX"
	EnvDisable = "AITEAM_DISABLE_ERROR_CODEX"
)

// Options carries the enablement inputs for one invocation.
type Options struct {
	EnableFlag  bool // --error-codex
	DisableFlag bool // --no-error-codex
	ConfigOn    bool // error_codex.enabled from the config file
}

// envSet treats "0" and empty as unset.
func envSet(getenv func(string) string, key string) bool {
	v := getenv(key)
	return v != "" && v != "0"
}

// Enabled resolves whether the arbiter runs at all. Precedence, strongest
// first: disable flag, disable env, enable flag, enable env or config.
// The default is off.
func Enabled(opts Options, getenv func(string) string) bool {
	if opts.DisableFlag {
		return false
	}
	if envSet(getenv, EnvDisable) {
		return false
	}
	if opts.EnableFlag {
		return true
	}
	return envSet(getenv, EnvEnable) || opts.ConfigOn
}

// Mux is the slice of multiplexer operations the arbiter needs.
// *tmux.Tmux satisfies it.
type Mux interface {
	Version() (string, error)
	ListPanes(session string) ([]tmux.Pane, error)
	SplitWindow(session, workDir string, horizontal bool, command string) (string, error)
	SetPaneTitle(tgt, title string) error
	SendKeys(tgt, text string) error
	SessionOption(session, name string) (string, error)
	SetSessionOption(session, name, value string) error
}

// Runner spawns the error-analysis pane.
type Runner struct {
	// ResolveSession names the session the failure belongs to. Called only
	// when the arbiter is enabled.
	ResolveSession func() (string, error)

	Mux Mux

	// LockDir holds per-session lock files (default ~/.aiteam/locks).
	LockDir string

	// CodexCommand launches the analysis agent in the new pane.
	CodexCommand string
}

// RunIfEnabled is the entry point for command-failure handling. When the
// arbiter is disabled it returns immediately: no session resolution, no
// lock, no multiplexer contact of any kind.
func (r *Runner) RunIfEnabled(opts Options, getenv func(string) string, errText string) error {
	if !Enabled(opts, getenv) {
		return nil
	}
	return r.Run(errText)
}

// Run analyzes errText in a fresh Codex pane, at most once per session.
// A disabled arbiter must not touch any collaborator, so callers gate on
// Enabled before calling Run (or use RunIfEnabled). An existing error pane
// and a busy lock are ordinary outcomes, not errors.
func (r *Runner) Run(errText string) error {
	session, err := r.ResolveSession()
	if err != nil {
		return fmt.Errorf("resolving session for error analysis: %w", err)
	}

	if _, err := r.Mux.Version(); err != nil {
		return fmt.Errorf("tmux unavailable for error analysis: %w", err)
	}

	// Cheap pre-check before taking the lock.
	panes, err := r.Mux.ListPanes(session)
	if err != nil {
		return err
	}
	if target.HasErrorPane(panes) {
		log.Debug("error_pane_exists", slog.String("session", session))
		return nil
	}

	lockDir := r.LockDir
	if lockDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		lockDir = filepath.Join(home, ".aiteam", "locks")
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(lockDir, session+".lock"))
	got, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("error-analysis lock: %w", err)
	}
	if !got {
		// Another process is already spawning the pane.
		log.Debug("error_pane_lock_busy", slog.String("session", session))
		return nil
	}
	defer lock.Unlock()

	// Authoritative re-check now that we hold the lock: a racer may have
	// spawned the pane between the pre-check and the acquisition.
	panes, err = r.Mux.ListPanes(session)
	if err != nil {
		return err
	}
	if target.HasErrorPane(panes) {
		log.Debug("error_pane_exists", slog.String("session", session))
		return nil
	}

	id, err := target.AllocateErrorID(r.Mux, session, panes)
	if err != nil {
		return err
	}
	paneID, err := r.Mux.SplitWindow(session, "", true, r.CodexCommand)
	if err != nil {
		return err
	}
	title := target.ErrorPaneTitle(id)
	if err := r.Mux.SetPaneTitle(paneID, title); err != nil {
		return err
	}
	if err := r.Mux.SendKeys(paneID, diagnosticPrompt(errText)); err != nil {
		return err
	}
	log.Info("error_pane_spawned",
		slog.String("session", session), slog.String("pane", paneID), slog.String("title", title))
	return nil
}

// diagnosticPrompt frames the failure for the analysis agent.
func diagnosticPrompt(errText string) string {
	return fmt.Sprintf(
		"An aiteam command in this session just failed with:\n\n%s\n\n"+
			"Please respond with:\n"+
			"1. Likely root cause\n"+
			"2. The corrected command or fix\n"+
			"3. Anything in the session state worth checking",
		errText)
}
