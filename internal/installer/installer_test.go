package installer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cchook/internal/hookevent"
	"cchook/pkg/logx"
)

func newTestInstaller(t *testing.T) *Installer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	return New(path, "/usr/local/bin/cchook hook", logx.Nop())
}

func readSettingsFile(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}
	return settings
}

func TestGenerateMappingCoversAllEvents(t *testing.T) {
	i := newTestInstaller(t)
	m := i.GenerateMapping()

	if len(m) != len(hookevent.All()) {
		t.Fatalf("expected %d events, got %d", len(hookevent.All()), len(m))
	}
	for _, e := range hookevent.All() {
		groups := m[string(e)]
		if len(groups) != 1 || len(groups[0].Hooks) != 1 {
			t.Fatalf("event %s: %+v", e, groups)
		}
		h := groups[0].Hooks[0]
		if h.Type != "command" || h.Command != "/usr/local/bin/cchook hook" || h.Timeout != 10 {
			t.Fatalf("event %s hook: %+v", e, h)
		}

		wantMatcher := ""
		if e == hookevent.PreToolUse || e == hookevent.PostToolUse {
			wantMatcher = "Bash|Write|Edit|MultiEdit"
		}
		if groups[0].Matcher != wantMatcher {
			t.Fatalf("event %s matcher = %q, want %q", e, groups[0].Matcher, wantMatcher)
		}
	}
}

func TestInstallAndVerify(t *testing.T) {
	i := newTestInstaller(t)

	if v := i.Verify(); v.Success {
		t.Fatalf("verify must fail before install")
	}

	report, err := i.Install(false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if report.BackupPath != "" {
		t.Fatalf("no backup expected for a fresh file: %q", report.BackupPath)
	}

	if v := i.Verify(); !v.Success {
		t.Fatalf("verify after install: %s", v.Error)
	}
	st := i.Status()
	if !st.Installed || st.Command != i.Command() {
		t.Fatalf("status: %+v", st)
	}
}

func TestInstallRefusesExistingHooksWithoutForce(t *testing.T) {
	i := newTestInstaller(t)
	if _, err := i.Install(false); err != nil {
		t.Fatalf("first install: %v", err)
	}

	if _, err := i.Install(false); !errors.Is(err, ErrHooksExist) {
		t.Fatalf("expected ErrHooksExist, got %v", err)
	}

	report, err := i.Install(true)
	if err != nil {
		t.Fatalf("forced install: %v", err)
	}
	if report.BackupPath == "" {
		t.Fatalf("forced reinstall must back up the previous file")
	}
	if _, err := os.Stat(report.BackupPath); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
}

func TestInstallPreservesForeignSettings(t *testing.T) {
	i := newTestInstaller(t)
	seed := `{
		"model": "opus",
		"env": {"FOO": "bar"},
		"hooks": {
			"Stop": [{"hooks": [{"type": "command", "command": "other-tool run", "timeout": 5}]}]
		}
	}`
	if err := os.MkdirAll(filepath.Dir(i.SettingsPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(i.SettingsPath(), []byte(seed), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	if _, err := i.Install(true); err != nil {
		t.Fatalf("Install: %v", err)
	}

	settings := readSettingsFile(t, i.SettingsPath())
	if string(settings["model"]) != `"opus"` {
		t.Fatalf("foreign key rewritten: %s", settings["model"])
	}
	if _, ok := settings["env"]; !ok {
		t.Fatalf("foreign env key dropped")
	}

	m, err := decodeHooks(settings)
	if err != nil {
		t.Fatalf("decodeHooks: %v", err)
	}
	if len(m["Stop"]) != 2 {
		t.Fatalf("Stop must keep the foreign group and gain ours: %+v", m["Stop"])
	}
	if m["Stop"][0].Hooks[0].Command != "other-tool run" {
		t.Fatalf("foreign Stop group lost: %+v", m["Stop"])
	}
	if m["Stop"][1].Hooks[0].Command != i.Command() {
		t.Fatalf("our Stop group missing: %+v", m["Stop"])
	}
}

func TestForcedReinstallPreservesForeignGroupsWithoutDuplicates(t *testing.T) {
	i := newTestInstaller(t)
	seed := `{
		"hooks": {
			"Stop": [
				{"hooks": [{"type": "command", "command": "other-tool run", "timeout": 5}]},
				{"hooks": [{"type": "command", "command": "/usr/local/bin/cchook hook", "timeout": 10}]}
			]
		}
	}`
	if err := os.MkdirAll(filepath.Dir(i.SettingsPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(i.SettingsPath(), []byte(seed), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	if _, err := i.Install(true); err != nil {
		t.Fatalf("forced install: %v", err)
	}
	if _, err := i.Install(true); err != nil {
		t.Fatalf("second forced install: %v", err)
	}

	m, err := decodeHooks(readSettingsFile(t, i.SettingsPath()))
	if err != nil {
		t.Fatalf("decodeHooks: %v", err)
	}
	var foreign, ours int
	for _, g := range m["Stop"] {
		if g.Hooks[0].Command == "other-tool run" {
			foreign++
		}
		if g.Hooks[0].Command == i.Command() {
			ours++
		}
	}
	if foreign != 1 || ours != 1 {
		t.Fatalf("Stop groups after two forced installs: foreign=%d ours=%d %+v", foreign, ours, m["Stop"])
	}
}

func TestUninstallKeepsForeignHooks(t *testing.T) {
	i := newTestInstaller(t)
	seed := `{
		"hooks": {
			"Stop": [
				{"hooks": [{"type": "command", "command": "/usr/local/bin/cchook hook", "timeout": 10}]},
				{"hooks": [{"type": "command", "command": "other-tool run", "timeout": 5}]}
			],
			"SessionStart": [
				{"hooks": [{"type": "command", "command": "other-tool greet", "timeout": 5}]}
			]
		}
	}`
	if err := os.MkdirAll(filepath.Dir(i.SettingsPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(i.SettingsPath(), []byte(seed), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	report, err := i.Uninstall()
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if report.BackupPath == "" {
		t.Fatalf("uninstall must back up the settings")
	}

	m, err := decodeHooks(readSettingsFile(t, i.SettingsPath()))
	if err != nil {
		t.Fatalf("decodeHooks: %v", err)
	}
	if len(m["Stop"]) != 1 || m["Stop"][0].Hooks[0].Command != "other-tool run" {
		t.Fatalf("foreign Stop hook lost: %+v", m["Stop"])
	}
	if len(m["SessionStart"]) != 1 {
		t.Fatalf("foreign SessionStart hook lost: %+v", m["SessionStart"])
	}
}

func TestUninstallRemovesEmptyHooksSection(t *testing.T) {
	i := newTestInstaller(t)
	if _, err := i.Install(false); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if _, err := i.Uninstall(); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	settings := readSettingsFile(t, i.SettingsPath())
	if _, ok := settings["hooks"]; ok {
		t.Fatalf("empty hooks section must be removed")
	}
}

func TestUninstallMissingFileIsNoop(t *testing.T) {
	i := newTestInstaller(t)
	report, err := i.Uninstall()
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if report.BackupPath != "" {
		t.Fatalf("nothing to back up: %+v", report)
	}
}

func TestVerifyMappingRequirements(t *testing.T) {
	i := newTestInstaller(t)

	if v := i.VerifyMapping(Mapping{}); v.Success {
		t.Fatalf("empty mapping must fail")
	}

	onlyStop := Mapping{"Stop": i.GenerateMapping()["Stop"]}
	v := i.VerifyMapping(onlyStop)
	if v.Success {
		t.Fatalf("missing Notification must fail")
	}

	foreign := Mapping{
		"Notification": []HookGroup{{Hooks: []HookCommand{{Type: "command", Command: "other-tool"}}}},
		"Stop":         i.GenerateMapping()["Stop"],
	}
	if v := i.VerifyMapping(foreign); v.Success {
		t.Fatalf("foreign Notification command must fail verification")
	}

	if v := i.VerifyMapping(i.GenerateMapping()); !v.Success {
		t.Fatalf("generated mapping must verify: %s", v.Error)
	}
}
