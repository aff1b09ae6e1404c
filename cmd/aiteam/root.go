package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/config"
	"github.com/tmuxai/aiteam/internal/git"
	"github.com/tmuxai/aiteam/internal/logging"
	"github.com/tmuxai/aiteam/internal/session"
	"github.com/tmuxai/aiteam/internal/target"
	"github.com/tmuxai/aiteam/internal/tmux"
)

var (
	cfg = config.Default()
	mux = tmux.New()

	flagSession      string
	flagConfigPath   string
	flagDebug        bool
	flagErrorCodex   bool
	flagNoErrorCodex bool
)

var rootCmd = &cobra.Command{
	Use:   "aiteam",
	Short: "Orchestrate a team of AI coding agents in tmux panes",
	Long: `aiteam runs a team of AI coding agents side by side in one tmux
session: a main agent pane plus worker panes, addressed by role names
instead of raw tmux targets, with relay and handoff between them.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagSession, "session", "s", "", "tmux session name")
	pf.StringVar(&flagConfigPath, "config", "", "config file (default ~/.aiteam/config.toml)")
	pf.BoolVar(&flagDebug, "debug", false, "write a debug log to ~/.aiteam/debug.log")
	pf.BoolVar(&flagErrorCodex, "error-codex", false, "spawn an error-analysis Codex pane when a command fails")
	pf.BoolVar(&flagNoErrorCodex, "no-error-codex", false, "never spawn the error-analysis pane (overrides --error-codex)")
}

// setup loads the config file and brings up logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	cfg = loaded

	logDir := ""
	debug := flagDebug || cfg.Logs.Debug
	if debug {
		if dir, err := config.Dir(); err == nil {
			logDir = dir
		}
	}
	logging.Init(logging.Config{
		LogDir:     logDir,
		Level:      cfg.Logs.Level,
		Format:     cfg.Logs.Format,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		Compress:   true,
		Debug:      debug,
	})

	mux.SetDebounce(cfg.SendDebounce())
	return nil
}

// requireSession returns the --session value or fails.
func requireSession() (string, error) {
	if flagSession == "" {
		return "", fmt.Errorf("--session is required")
	}
	return flagSession, nil
}

// resolveExistingSession names the session the current invocation belongs
// to: the --session flag when given, otherwise the repository-derived name
// if such a session exists.
func resolveExistingSession() (string, error) {
	if flagSession != "" {
		return flagSession, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	name := session.RepoName(git.Open(cwd))
	if name == "" {
		name = session.FallbackBase
	}
	ok, err := mux.HasSession(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no session named %q; pass --session", name)
	}
	return name, nil
}

// resolvePane maps a selector like "claude" or "codex:2" to a concrete pane
// of the session.
func resolvePane(sess, raw string) (tmux.Pane, error) {
	sel, err := target.Parse(raw)
	if err != nil {
		return tmux.Pane{}, err
	}
	panes, err := mux.ListPanes(sess)
	if err != nil {
		return tmux.Pane{}, err
	}
	return target.Resolve(sel, panes)
}

// splitHorizontal validates a --layout value.
func splitHorizontal(layout string) (bool, error) {
	switch layout {
	case "horizontal":
		return true, nil
	case "vertical", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --layout %q: want horizontal or vertical", layout)
	}
}
