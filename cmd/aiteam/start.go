package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/git"
	"github.com/tmuxai/aiteam/internal/session"
)

var (
	startCwd   string
	startMain  string
	startTitle string
	startExec  string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Create a session and launch the main agent in its first pane",
	RunE:  runStart,
}

func init() {
	f := startCmd.Flags()
	f.StringVar(&startCwd, "cwd", "", "working directory for the session (default current directory)")
	f.StringVar(&startMain, "main", "claude", "main agent: claude, codex or custom")
	f.StringVar(&startTitle, "title", "", "pane title for the main agent (default: the agent name)")
	f.StringVar(&startExec, "exec", "", "command to launch (required with --main custom)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	command, title, err := mainAgent()
	if err != nil {
		return err
	}

	cwd := startCwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return err
		}
	}

	name, auto, err := session.ResolveNewSessionName(flagSession, git.Open(cwd), mux.HasSession)
	if err != nil {
		return err
	}

	if err := mux.NewSession(name, cwd); err != nil {
		return err
	}

	panes, err := mux.ListPanes(name)
	if err != nil {
		return err
	}
	if len(panes) == 0 {
		return fmt.Errorf("session %q created without a pane", name)
	}
	first := panes[0]
	if err := mux.SetPaneTitle(first.ID, title); err != nil {
		return err
	}
	if command != "" {
		if err := mux.SendKeys(first.ID, command); err != nil {
			return err
		}
	}

	if auto {
		fmt.Fprintf(cmd.ErrOrStderr(), "session name auto-generated: %s\n", name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}

// mainAgent maps --main to the launch command and default pane title.
func mainAgent() (command, title string, err error) {
	switch startMain {
	case "claude":
		command, title = cfg.Agents.ClaudeCommand, "claude"
	case "codex":
		command, title = cfg.Agents.CodexCommand, "codex"
	case "custom":
		if startExec == "" {
			return "", "", fmt.Errorf("--main custom requires --exec")
		}
		command, title = startExec, "main"
	default:
		return "", "", fmt.Errorf("invalid --main %q: want claude, codex or custom", startMain)
	}
	if startExec != "" {
		command = startExec
	}
	if startTitle != "" {
		title = startTitle
	}
	return command, title, nil
}
