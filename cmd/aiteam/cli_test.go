package main

import (
	"testing"
)

func TestParseWorker(t *testing.T) {
	cases := []struct {
		spec    string
		name    string
		command string
		ok      bool
	}{
		{"tests=npm test", "tests", "npm test", true},
		{"agent=codex --profile x=y", "agent", "codex --profile x=y", true},
		{"justaname", "", "", false},
		{"=cmd", "", "", false},
		{"name=", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		name, command, err := parseWorker(tc.spec)
		if tc.ok != (err == nil) {
			t.Errorf("parseWorker(%q) error = %v, want ok=%v", tc.spec, err, tc.ok)
			continue
		}
		if name != tc.name || command != tc.command {
			t.Errorf("parseWorker(%q) = %q, %q", tc.spec, name, command)
		}
	}
}

func TestSplitHorizontal(t *testing.T) {
	if h, err := splitHorizontal("horizontal"); err != nil || !h {
		t.Errorf("horizontal: %v, %v", h, err)
	}
	if h, err := splitHorizontal("vertical"); err != nil || h {
		t.Errorf("vertical: %v, %v", h, err)
	}
	if h, err := splitHorizontal(""); err != nil || h {
		t.Errorf("default: %v, %v", h, err)
	}
	if _, err := splitHorizontal("diagonal"); err == nil {
		t.Error("diagonal accepted")
	}
}

func TestMainAgent(t *testing.T) {
	restore := func() {
		startMain, startExec, startTitle = "claude", "", ""
	}
	defer restore()

	restore()
	command, title, err := mainAgent()
	if err != nil || command != cfg.Agents.ClaudeCommand || title != "claude" {
		t.Errorf("claude: %q %q %v", command, title, err)
	}

	restore()
	startMain = "codex"
	command, title, err = mainAgent()
	if err != nil || command != cfg.Agents.CodexCommand || title != "codex" {
		t.Errorf("codex: %q %q %v", command, title, err)
	}

	restore()
	startMain = "custom"
	if _, _, err := mainAgent(); err == nil {
		t.Error("custom without --exec accepted")
	}

	restore()
	startMain, startExec, startTitle = "custom", "./run-agent.sh", "helper"
	command, title, err = mainAgent()
	if err != nil || command != "./run-agent.sh" || title != "helper" {
		t.Errorf("custom: %q %q %v", command, title, err)
	}

	restore()
	startMain, startExec = "claude", "claude --continue"
	command, _, err = mainAgent()
	if err != nil || command != "claude --continue" {
		t.Errorf("exec override: %q %v", command, err)
	}

	restore()
	startMain = "gemini"
	if _, _, err := mainAgent(); err == nil {
		t.Error("unknown agent accepted")
	}
}
