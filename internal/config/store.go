package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cchook/internal/hookevent"
	"cchook/pkg/logx"
)

// ConfigError marks failures the CLI should treat as fatal configuration
// problems (as opposed to the soft-fail reads in Load).
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

var ErrNotLoaded = errors.New("configuration not loaded")

// Store owns the persisted configuration document and its in-memory cache.
// It is an explicit handle passed into the dispatcher and CLI commands;
// nothing in this repo holds a package-level config singleton.
//
// Load never surfaces I/O errors: a hook invocation must keep working with
// defaults when the filesystem misbehaves. Save is the opposite: it is only
// reached from explicit user mutations and fails loudly.
type Store struct {
	path string
	log  logx.Logger

	mu     sync.Mutex
	cfg    *Config
	loaded bool
}

func NewStore(path string, log logx.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

// Load reads and caches the persisted document.
//
//   - absent file: defaults are created and persisted
//   - unparseable file: timestamped backup, then defaults persisted
//   - parseable file: sanitized (unknown events/channels filtered) and cached
//   - any read failure: in-memory defaults, nothing persisted, nil error
func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Debug("config file absent, writing defaults", logx.String("path", s.path))
		s.cfg = Defaults()
		s.loaded = true
		if serr := s.saveLocked(); serr != nil {
			// First-run persist is best-effort; the defaults still serve.
			s.log.Warn("could not persist default config", logx.Err(serr))
		}
		return s.cfg, nil
	}
	if err != nil {
		s.log.Warn("config read failed, using in-memory defaults", logx.Err(err))
		s.cfg = Defaults()
		s.loaded = true
		return s.cfg, nil
	}

	jb, format, err := coerceToJSONBytes(s.path, data)
	if err == nil {
		var cfg Config
		err = json.Unmarshal(jb, &cfg)
		if err == nil {
			s.cfg = sanitize(&cfg)
			s.loaded = true
			s.log.Debug("config loaded", logx.String("format", format))
			return s.cfg, nil
		}
	}

	// The document exists but cannot be decoded. Preserve it for the user,
	// then start over from defaults.
	s.log.Warn("config invalid, backing up and resetting", logx.Err(err))
	if backup, berr := backupFile(s.path); berr != nil {
		s.log.Warn("config backup failed", logx.Err(berr))
	} else {
		s.log.Info("invalid config backed up", logx.String("backup", backup))
	}
	s.cfg = Defaults()
	s.loaded = true
	if serr := s.saveLocked(); serr != nil {
		s.log.Warn("could not persist reset config", logx.Err(serr))
	}
	return s.cfg, nil
}

// Get returns the cached document, loading on first use.
func (s *Store) Get() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return s.loadLocked()
	}
	return s.cfg, nil
}

// Invalidate drops the cache so the next access re-reads the file.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cfg = nil
	s.loaded = false
	s.mu.Unlock()
}

// Save persists the cached document atomically (write-then-rename) and
// stamps updatedAt. Requires a prior Load.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if !s.loaded || s.cfg == nil {
		return &ConfigError{Op: "save", Err: ErrNotLoaded}
	}

	s.cfg.UpdatedAt = time.Now().Format(time.RFC3339)

	b, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return &ConfigError{Op: "save", Err: err}
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &ConfigError{Op: "save", Err: err}
	}

	tmp := s.path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &ConfigError{Op: "save", Err: err}
	}
	if _, err := out.Write(b); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return &ConfigError{Op: "save", Err: err}
	}
	_ = out.Sync()
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return &ConfigError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &ConfigError{Op: "save", Err: err}
	}
	return nil
}

// IsEventEnabled never errors: an unloaded store means nothing is enabled,
// and silent mode wins over any per-event setting.
func (s *Store) IsEventEnabled(event hookevent.EventType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.cfg == nil {
		return false
	}
	if s.cfg.Mode == ModeSilent {
		return false
	}
	for _, e := range s.cfg.EnabledEvents {
		if e == event {
			return true
		}
	}
	return false
}

// SetMode switches normal/silent and persists.
func (s *Store) SetMode(mode Mode) error {
	if mode != ModeNormal && mode != ModeSilent {
		return &ConfigError{Op: "set mode", Err: fmt.Errorf("invalid mode: %s", mode)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Mode = mode
	return s.saveLocked()
}

// AddEvent enables an event. Enabling an already-enabled event succeeds
// without touching the file.
func (s *Store) AddEvent(event hookevent.EventType) error {
	if !hookevent.Known(string(event)) {
		return &ConfigError{Op: "add event", Err: fmt.Errorf("invalid event type: %s", event)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	for _, e := range s.cfg.EnabledEvents {
		if e == event {
			return nil
		}
	}
	s.cfg.EnabledEvents = append(s.cfg.EnabledEvents, event)
	return s.saveLocked()
}

// RemoveEvent disables an event. Removing an absent event succeeds without
// touching the file.
func (s *Store) RemoveEvent(event hookevent.EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	for i, e := range s.cfg.EnabledEvents {
		if e == event {
			s.cfg.EnabledEvents = append(s.cfg.EnabledEvents[:i], s.cfg.EnabledEvents[i+1:]...)
			return s.saveLocked()
		}
	}
	return nil
}

// SetPrimaryType sets notifications.type.
func (s *Store) SetPrimaryType(t ChannelType) error {
	if !channelTypeKnown(t, primaryChannelTypes()) {
		return &ConfigError{Op: "set notification type", Err: fmt.Errorf("invalid notification type: %s", t)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Notifications.Type = t
	return s.saveLocked()
}

// SetDefaultChannels replaces the ordered dispatch channel list.
func (s *Store) SetDefaultChannels(list []ChannelType) error {
	for _, t := range list {
		if !channelTypeKnown(t, PersistentChannelTypes()) {
			return &ConfigError{Op: "set default channels", Err: fmt.Errorf("invalid default notification type: %s", t)}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Notifications.DefaultTypes = append([]ChannelType(nil), list...)
	return s.saveLocked()
}

func (s *Store) SetDingTalk(set DingTalkSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Notifications.DingTalk = set
	return s.saveLocked()
}

func (s *Store) SetDesktop(set DesktopSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Notifications.Desktop = set
	return s.saveLocked()
}

func (s *Store) SetTelegram(set TelegramSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cfg.Notifications.Telegram = set
	return s.saveLocked()
}

// SetProjectConfig stores an opaque per-project settings record.
func (s *Store) SetProjectConfig(path string, settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return err
	}
	if s.cfg.ProjectConfig == nil {
		s.cfg.ProjectConfig = map[string]map[string]any{}
	}
	s.cfg.ProjectConfig[path] = settings
	return s.saveLocked()
}

// ProjectConfig returns the per-project record, empty when absent.
func (s *Store) ProjectConfig(path string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if pc, ok := s.cfg.ProjectConfig[path]; ok {
		return pc, nil
	}
	return map[string]any{}, nil
}

func (s *Store) ensureLoaded() (*Config, error) {
	if s.loaded && s.cfg != nil {
		return s.cfg, nil
	}
	return s.loadLocked()
}

// backupFile copies path aside with a unix-millis suffix. An existing
// backup is never overwritten; the suffix grows until a free name is found.
func backupFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s.backup.%d", path, time.Now().UnixMilli())
	backup := base
	for i := 1; ; i++ {
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			break
		}
		backup = fmt.Sprintf("%s-%d", base, i)
	}

	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", err
	}
	return backup, nil
}

// Pretty renders the document the way Save persists it.
func Pretty(cfg *Config) (string, error) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Fingerprint is a stable digest of the document used by tests and the
// status command to detect drift between two loads.
func Fingerprint(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	cp := *cfg
	cp.UpdatedAt = ""
	b, err := json.Marshal(&cp)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	_ = json.Compact(&buf, b)
	return buf.String()
}
