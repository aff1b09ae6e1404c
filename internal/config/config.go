// Package config loads aiteam's user configuration from
// ~/.aiteam/config.toml. A missing file means defaults; a malformed file is
// an error so typos do not silently vanish.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the user-tunable configuration. Command-line flags override
// everything here; environment toggles sit between flags and file values.
type Config struct {
	Agents     AgentsConfig     `toml:"agents"`
	Watch      WatchConfig      `toml:"watch"`
	Send       SendConfig       `toml:"send"`
	ErrorCodex ErrorCodexConfig `toml:"error_codex"`
	Logs       LogsConfig       `toml:"logs"`
}

// AgentsConfig names the commands that launch each agent kind.
type AgentsConfig struct {
	ClaudeCommand string `toml:"claude_command"`
	CodexCommand  string `toml:"codex_command"`
}

// WatchConfig tunes the relay/capture poll loop.
type WatchConfig struct {
	IntervalMS   int `toml:"interval_ms"`
	TimeoutSec   int `toml:"timeout_sec"`
	CaptureLines int `toml:"capture_lines"`
	ContextLines int `toml:"context_lines"`
}

// SendConfig tunes text delivery to panes.
type SendConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// ErrorCodexConfig controls the error-analysis pane.
type ErrorCodexConfig struct {
	Enabled bool   `toml:"enabled"`
	Command string `toml:"command"`
}

// LogsConfig controls the debug log.
type LogsConfig struct {
	Debug      bool   `toml:"debug"`
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Agents: AgentsConfig{
			ClaudeCommand: "claude",
			CodexCommand:  "codex",
		},
		Watch: WatchConfig{
			IntervalMS:   1000,
			TimeoutSec:   120,
			CaptureLines: 200,
			ContextLines: 2,
		},
		Send: SendConfig{
			DebounceMS: 100,
		},
		ErrorCodex: ErrorCodexConfig{
			Enabled: false,
			Command: "codex",
		},
		Logs: LogsConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Dir returns aiteam's state directory (~/.aiteam).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aiteam"), nil
}

// Load reads path over the defaults. Empty path means ~/.aiteam/config.toml.
// A nonexistent file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// PollInterval converts the configured interval to a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.IntervalMS) * time.Millisecond
}

// PollTimeout converts the configured timeout to a duration.
func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.Watch.TimeoutSec) * time.Second
}

// SendDebounce converts the configured debounce to a duration.
func (c Config) SendDebounce() time.Duration {
	return time.Duration(c.Send.DebounceMS) * time.Millisecond
}
