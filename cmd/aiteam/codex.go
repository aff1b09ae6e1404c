package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tmuxai/aiteam/internal/target"
)

var (
	codexName   string
	codexExec   string
	codexLayout string
)

var codexCmd = &cobra.Command{
	Use:   "codex",
	Short: "Spawn a worker Codex pane and print its selector",
	Long: `Spawns a Codex worker pane in the session. Each worker gets the next
free numeric id; the printed selector (codex:<id>) addresses the pane in
send, relay, handoff and capture.`,
	RunE: runCodex,
}

func init() {
	f := codexCmd.Flags()
	f.StringVar(&codexName, "name", "main", "worker name shown in the pane title")
	f.StringVar(&codexExec, "exec", "", "command to launch (default: the configured codex command)")
	f.StringVar(&codexLayout, "layout", "vertical", "split layout: horizontal or vertical")
	rootCmd.AddCommand(codexCmd)
}

func runCodex(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	horizontal, err := splitHorizontal(codexLayout)
	if err != nil {
		return err
	}
	command := codexExec
	if command == "" {
		command = cfg.Agents.CodexCommand
	}

	panes, err := mux.ListPanes(sess)
	if err != nil {
		return err
	}
	id, err := target.AllocateCodexID(mux, sess, panes)
	if err != nil {
		return err
	}

	paneID, err := mux.SplitWindow(sess, "", horizontal, command)
	if err != nil {
		return err
	}
	if err := mux.SetPaneTitle(paneID, target.WorkerTitle(id, codexName)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "codex:%d\n", id)
	return nil
}
