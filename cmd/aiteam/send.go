package main

import (
	"github.com/spf13/cobra"
)

var (
	sendTo   string
	sendBody string
	sendKey  string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Type a message into a pane and press Enter",
	Long: `Types --body into the target pane literally and presses Enter.
With --key a single key name (e.g. C-c, Escape) is sent instead, without
Enter, for interrupting or steering an agent.`,
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendTo, "to", "", "target pane (role, codex:<id> or codex:err<n>)")
	f.StringVar(&sendBody, "body", "", "text to send")
	f.StringVar(&sendKey, "key", "", "raw key to send instead of text (no Enter appended)")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagsOneRequired("body", "key")
	sendCmd.MarkFlagsMutuallyExclusive("body", "key")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	pane, err := resolvePane(sess, sendTo)
	if err != nil {
		return err
	}
	if sendKey != "" {
		return mux.SendKeysRaw(pane.ID, sendKey)
	}
	return mux.SendKeys(pane.ID, sendBody)
}
