package config

import (
	"strings"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CCHOOK_CONFIG", "/tmp/alt/config.json")
	t.Setenv("CCHOOK_LOG_FILE", "/tmp/alt/hooks.log")
	t.Setenv("CCHOOK_LOG_LEVEL", "debug")

	e := LoadEnv()
	if e.ConfigPath != "/tmp/alt/config.json" || e.LogFile != "/tmp/alt/hooks.log" || e.LogLevel != "debug" {
		t.Fatalf("env not honored: %+v", e)
	}
	if DefaultPath() != "/tmp/alt/config.json" {
		t.Fatalf("DefaultPath ignored CCHOOK_CONFIG: %s", DefaultPath())
	}
	if DefaultLogPath() != "/tmp/alt/hooks.log" {
		t.Fatalf("DefaultLogPath ignored CCHOOK_LOG_FILE: %s", DefaultLogPath())
	}
}

func TestDefaultPathsUnderHome(t *testing.T) {
	t.Setenv("CCHOOK_CONFIG", "")
	t.Setenv("CCHOOK_LOG_FILE", "")

	if !strings.HasSuffix(DefaultPath(), "/.cchook/config.json") {
		t.Fatalf("DefaultPath = %s", DefaultPath())
	}
	if !strings.HasSuffix(DefaultLogPath(), "/.cchook/hooks.log") {
		t.Fatalf("DefaultLogPath = %s", DefaultLogPath())
	}
	if !strings.HasSuffix(ClaudeSettingsPath(), "/.claude/settings.json") {
		t.Fatalf("ClaudeSettingsPath = %s", ClaudeSettingsPath())
	}
}
