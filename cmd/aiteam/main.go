package main

import (
	"fmt"
	"os"

	"github.com/tmuxai/aiteam/internal/arbiter"
	"github.com/tmuxai/aiteam/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logging.Shutdown()

	if err := rootCmd.Execute(); err != nil {
		engageArbiter(err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// engageArbiter hands a command failure to the error-analysis pane. When
// disabled it returns without touching tmux or the repository at all.
func engageArbiter(cmdErr error) {
	opts := arbiter.Options{
		EnableFlag:  flagErrorCodex,
		DisableFlag: flagNoErrorCodex,
		ConfigOn:    cfg.ErrorCodex.Enabled,
	}
	r := &arbiter.Runner{
		ResolveSession: resolveExistingSession,
		Mux:            mux,
		CodexCommand:   cfg.ErrorCodex.Command,
	}
	if err := r.RunIfEnabled(opts, os.Getenv, cmdErr.Error()); err != nil {
		// Analysis is best effort; the original failure still gets reported.
		logging.ForComponent(logging.CompCLI).Warn("error_analysis_failed", "error", err)
	}
}
