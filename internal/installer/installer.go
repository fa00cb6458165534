// Package installer manages this tool's hook entries inside the external
// tool's settings file (~/.claude/settings.json). It generates the
// event-to-command mapping, verifies an installed state, and merges or
// strips entries while leaving every foreign key untouched.
package installer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cchook/internal/config"
	"cchook/internal/hookevent"
	"cchook/pkg/logx"
)

const (
	// hookTimeoutSeconds bounds each hook invocation; the external tool
	// enforces it, we only declare it.
	hookTimeoutSeconds = 10

	toolUseMatcher = "Bash|Write|Edit|MultiEdit"

	// commandMarker identifies our own entries in a settings file that may
	// hold hooks from other tools too.
	commandMarker = "cchook"
)

// HookCommand is one installed command entry.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

// HookGroup is one matcher group under an event.
type HookGroup struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// Mapping is the hooks section: event name → matcher groups.
type Mapping map[string][]HookGroup

// Installer reads and rewrites the external settings file.
type Installer struct {
	settingsPath string
	command      string
	log          logx.Logger
}

// New builds an installer whose hook entries invoke command. An empty
// command resolves to this binary's `hook` subcommand.
func New(settingsPath, command string, log logx.Logger) *Installer {
	if settingsPath == "" {
		settingsPath = config.ClaudeSettingsPath()
	}
	if command == "" {
		if exe, err := os.Executable(); err == nil {
			command = exe + " hook"
		} else {
			command = commandMarker + " hook"
		}
	}
	return &Installer{settingsPath: settingsPath, command: command, log: log}
}

func (i *Installer) SettingsPath() string { return i.settingsPath }
func (i *Installer) Command() string      { return i.command }

// RequiredEvents is the minimal set that must be installed for the tool to
// be considered working.
func RequiredEvents() []hookevent.EventType {
	return []hookevent.EventType{hookevent.Notification, hookevent.Stop}
}

// GenerateMapping emits one entry per event type. PreToolUse/PostToolUse
// carry the important-tools matcher so the external tool filters for us.
func (i *Installer) GenerateMapping() Mapping {
	m := Mapping{}
	for _, e := range hookevent.All() {
		group := HookGroup{
			Hooks: []HookCommand{{
				Type:    "command",
				Command: i.command,
				Timeout: hookTimeoutSeconds,
			}},
		}
		if e == hookevent.PreToolUse || e == hookevent.PostToolUse {
			group.Matcher = toolUseMatcher
		}
		m[string(e)] = []HookGroup{group}
	}
	return m
}

// VerifyResult reports an installation check.
type VerifyResult struct {
	Success bool
	Error   string
}

// VerifyMapping checks an already-decoded hooks section: every required
// event must be present, and the Notification command must reference this
// tool's invocation.
func (i *Installer) VerifyMapping(m Mapping) VerifyResult {
	if len(m) == 0 {
		return VerifyResult{Error: "no hooks section in settings"}
	}

	var missing []string
	for _, e := range RequiredEvents() {
		if len(m[string(e)]) == 0 {
			missing = append(missing, string(e))
		}
	}
	if len(missing) > 0 {
		return VerifyResult{Error: "missing required hook events: " + strings.Join(missing, ", ")}
	}

	for _, group := range m[string(hookevent.Notification)] {
		for _, h := range group.Hooks {
			if strings.Contains(h.Command, commandMarker) {
				return VerifyResult{Success: true}
			}
		}
	}
	return VerifyResult{Error: "hook command does not reference " + commandMarker}
}

// Verify reads the settings file and checks the installed mapping.
func (i *Installer) Verify() VerifyResult {
	settings, err := i.readSettings()
	if err != nil {
		return VerifyResult{Error: err.Error()}
	}
	m, err := decodeHooks(settings)
	if err != nil {
		return VerifyResult{Error: err.Error()}
	}
	return i.VerifyMapping(m)
}

var ErrHooksExist = errors.New("hooks already configured in settings (use --force to overwrite)")

// InstallReport describes what Install changed.
type InstallReport struct {
	BackupPath string
}

// Install merges the generated mapping into the settings file. Our own
// matcher groups are replaced; foreign groups under the same events, and
// everything else in the file, are preserved. The previous file is backed
// up first, and an existing hooks section is refused without force.
func (i *Installer) Install(force bool) (*InstallReport, error) {
	settings, err := i.readSettings()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}

	existing, derr := decodeHooks(settings)
	if derr != nil {
		return nil, derr
	}
	if len(existing) > 0 && !force {
		return nil, ErrHooksExist
	}

	report := &InstallReport{}
	if _, err := os.Stat(i.settingsPath); err == nil {
		backup, berr := backupFile(i.settingsPath)
		if berr != nil {
			return nil, fmt.Errorf("backing up settings: %w", berr)
		}
		report.BackupPath = backup
		i.log.Debug("settings backed up", logx.String("backup", backup))
	}

	merged := existing
	if merged == nil {
		merged = Mapping{}
	}
	for event, groups := range i.GenerateMapping() {
		merged[event] = append(foreignGroups(merged[event]), groups...)
	}

	if err := encodeHooks(settings, merged); err != nil {
		return nil, err
	}
	if err := i.writeSettings(settings); err != nil {
		return nil, err
	}
	return report, nil
}

// Uninstall strips only the hook groups whose command references this
// tool, keeping foreign hooks and all other settings intact.
func (i *Installer) Uninstall() (*InstallReport, error) {
	settings, err := i.readSettings()
	if os.IsNotExist(err) {
		return &InstallReport{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	m, err := decodeHooks(settings)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return &InstallReport{}, nil
	}

	backup, berr := backupFile(i.settingsPath)
	if berr != nil {
		return nil, fmt.Errorf("backing up settings: %w", berr)
	}

	kept := Mapping{}
	for event, groups := range m {
		if keptGroups := foreignGroups(groups); len(keptGroups) > 0 {
			kept[event] = keptGroups
		}
	}

	if len(kept) == 0 {
		delete(settings, "hooks")
	} else if err := encodeHooks(settings, kept); err != nil {
		return nil, err
	}

	if err := i.writeSettings(settings); err != nil {
		return nil, err
	}
	return &InstallReport{BackupPath: backup}, nil
}

// Status summarizes the installation for the status command.
type Status struct {
	Installed    bool
	Error        string
	SettingsPath string
	Command      string
}

func (i *Installer) Status() Status {
	v := i.Verify()
	return Status{
		Installed:    v.Success,
		Error:        v.Error,
		SettingsPath: i.settingsPath,
		Command:      i.command,
	}
}

func (i *Installer) readSettings() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(i.settingsPath)
	if err != nil {
		return nil, err
	}
	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("settings file is not a JSON object: %w", err)
	}
	return settings, nil
}

func (i *Installer) writeSettings(settings map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(i.settingsPath), 0o755); err != nil {
		return err
	}
	tmp := i.settingsPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, i.settingsPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// foreignGroups filters out matcher groups whose command references this
// tool, keeping other tools' groups under the same event.
func foreignGroups(groups []HookGroup) []HookGroup {
	var kept []HookGroup
	for _, g := range groups {
		ours := false
		for _, h := range g.Hooks {
			if strings.Contains(h.Command, commandMarker) {
				ours = true
				break
			}
		}
		if !ours {
			kept = append(kept, g)
		}
	}
	return kept
}

func decodeHooks(settings map[string]json.RawMessage) (Mapping, error) {
	raw, ok := settings["hooks"]
	if !ok {
		return nil, nil
	}
	var m Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("hooks section is malformed: %w", err)
	}
	return m, nil
}

func encodeHooks(settings map[string]json.RawMessage, m Mapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	settings["hooks"] = raw
	return nil
}

func backupFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.backup.%d", path, time.Now().UnixMilli())
	for n := 1; ; n++ {
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			break
		}
		backup = fmt.Sprintf("%s.backup.%d-%d", path, time.Now().UnixMilli(), n)
	}
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", err
	}
	return backup, nil
}
