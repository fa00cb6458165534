package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Env collects the environment overrides honored by every entrypoint.
// Overrides win over the built-in per-user paths but never over explicit
// CLI flags.
type Env struct {
	ConfigPath string `envconfig:"CONFIG"`
	LogFile    string `envconfig:"LOG_FILE"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads CCHOOK_* overrides. A malformed environment falls back to
// defaults; the tool must stay usable inside arbitrary hook environments.
func LoadEnv() Env {
	var e Env
	if err := envconfig.Process("cchook", &e); err != nil {
		return Env{LogLevel: "info"}
	}
	return e
}

// Dir returns the per-user cchook directory (~/.cchook).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cchook"
	}
	return filepath.Join(home, ".cchook")
}

// DefaultPath returns the persisted configuration path, honoring CCHOOK_CONFIG.
func DefaultPath() string {
	if p := LoadEnv().ConfigPath; p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.json")
}

// DefaultLogPath returns the hook log path, honoring CCHOOK_LOG_FILE.
func DefaultLogPath() string {
	if p := LoadEnv().LogFile; p != "" {
		return p
	}
	return filepath.Join(Dir(), "hooks.log")
}

// ClaudeSettingsPath returns the external tool's settings file the installer
// merges hooks into.
func ClaudeSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "settings.json")
	}
	return filepath.Join(home, ".claude", "settings.json")
}
