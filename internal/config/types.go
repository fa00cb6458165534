package config

import (
	"encoding/json"
	"fmt"
	"time"

	"cchook/internal/hookevent"
)

// Mode is the global dispatch switch.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeSilent Mode = "silent"
)

func ValidModes() []Mode { return []Mode{ModeNormal, ModeSilent} }

// ChannelType names one notification delivery mechanism. The persisted
// schema treats it as an open-ended string, but the factory in
// internal/notify is the sole authority on what is constructible.
type ChannelType string

const (
	ChannelDingTalk ChannelType = "dingtalk"
	ChannelDesktop  ChannelType = "desktop"
	ChannelTelegram ChannelType = "telegram"
	// ChannelConsole is CLI-only; it is never valid in defaultTypes.
	ChannelConsole ChannelType = "console"
)

// PersistentChannelTypes are the channels allowed in notifications.defaultTypes.
func PersistentChannelTypes() []ChannelType {
	return []ChannelType{ChannelDingTalk, ChannelDesktop, ChannelTelegram}
}

// Config is the persisted per-user configuration document
// (~/.cchook/config.json, YAML accepted on read).
type Config struct {
	Version       string                    `json:"version"`
	Mode          Mode                      `json:"mode"`
	EnabledEvents []hookevent.EventType     `json:"enabledEvents"`
	Notifications NotificationsConfig       `json:"notifications"`
	ProjectConfig map[string]map[string]any `json:"projectConfigs,omitempty"`
	CreatedAt     string                    `json:"createdAt,omitempty"`
	UpdatedAt     string                    `json:"updatedAt,omitempty"`
}

type NotificationsConfig struct {
	// Type is the primary channel for single-channel paths (status display,
	// `cchook notify` without an explicit --type).
	Type     ChannelType      `json:"type"`
	Desktop  DesktopSettings  `json:"desktop"`
	DingTalk DingTalkSettings `json:"dingtalk"`
	Telegram TelegramSettings `json:"telegram"`
	// DefaultTypes is the ordered channel list a hook dispatch fans out to.
	DefaultTypes []ChannelType `json:"defaultTypes"`
}

type DesktopSettings struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Sound    Sound  `json:"sound,omitempty"`
}

type DingTalkSettings struct {
	AccessToken string `json:"accessToken"`
	Secret      string `json:"secret"`
}

type TelegramSettings struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chatId"`
}

// Sound accepts the two shapes older configs used: a boolean (play the
// default sound or none) or a named sound string.
type Sound struct {
	// Name is the resolved sound name; "none" means no sound clause at all.
	Name string
}

const (
	soundDefault = "default"
	soundNone    = "none"
)

func (s Sound) IsZero() bool { return s.Name == "" }

// Resolve returns the effective sound name, "" when sound is disabled.
func (s Sound) Resolve() string {
	name := s.Name
	if name == "" {
		name = soundDefault
	}
	if name == soundNone {
		return ""
	}
	return name
}

func (s Sound) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

func (s *Sound) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			s.Name = soundDefault
		} else {
			s.Name = soundNone
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Name = str
		return nil
	}
	return fmt.Errorf("sound must be a boolean or a sound name")
}

const currentVersion = "1.0.0"

// Defaults returns the configuration written on first access. DingTalk is
// the default dispatch channel, matching the tool's primary use; it stays
// inert until credentials are configured.
func Defaults() *Config {
	now := time.Now().Format(time.RFC3339)
	return &Config{
		Version: currentVersion,
		Mode:    ModeNormal,
		EnabledEvents: []hookevent.EventType{
			hookevent.Notification,
			hookevent.Stop,
			hookevent.UserPromptSubmit,
		},
		Notifications: NotificationsConfig{
			Type: ChannelDesktop,
			Desktop: DesktopSettings{
				Title:    "Claude Code",
				Subtitle: "Notification",
				Sound:    Sound{Name: soundDefault},
			},
			DefaultTypes: []ChannelType{ChannelDingTalk},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
