package config

import (
	"fmt"
	"strings"
	"time"

	"cchook/internal/hookevent"
)

// primaryChannelTypes are valid values for notifications.type.
func primaryChannelTypes() []ChannelType {
	return []ChannelType{ChannelDesktop, ChannelConsole, ChannelDingTalk, ChannelTelegram}
}

func channelTypeKnown(t ChannelType, set []ChannelType) bool {
	for _, c := range set {
		if c == t {
			return true
		}
	}
	return false
}

func joinChannelTypes(set []ChannelType) string {
	names := make([]string, len(set))
	for i, c := range set {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func joinEvents(set []hookevent.EventType) string {
	names := make([]string, len(set))
	for i, e := range set {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// Validate reports every problem with cfg. Unlike sanitize, unknown entries
// are reported, not dropped: this is the explicit check behind
// `cchook status --verbose` and test fixtures.
func Validate(cfg *Config) []error {
	var errs []error
	if cfg == nil {
		return []error{fmt.Errorf("configuration must be an object")}
	}

	if cfg.Mode != "" && cfg.Mode != ModeNormal && cfg.Mode != ModeSilent {
		errs = append(errs, fmt.Errorf("invalid mode: %s (valid: normal, silent)", cfg.Mode))
	}

	for _, e := range cfg.EnabledEvents {
		if !hookevent.Known(string(e)) {
			errs = append(errs, fmt.Errorf("invalid event type: %s (valid: %s)", e, joinEvents(hookevent.All())))
		}
	}

	if cfg.Notifications.Type != "" && !channelTypeKnown(cfg.Notifications.Type, primaryChannelTypes()) {
		errs = append(errs, fmt.Errorf("invalid notification type: %s (valid: %s)",
			cfg.Notifications.Type, joinChannelTypes(primaryChannelTypes())))
	}

	for _, t := range cfg.Notifications.DefaultTypes {
		if !channelTypeKnown(t, PersistentChannelTypes()) {
			errs = append(errs, fmt.Errorf("invalid default notification type: %s (valid: %s)",
				t, joinChannelTypes(PersistentChannelTypes())))
		}
	}

	return errs
}

// sanitize repairs a decoded document in place of rejecting it: unknown
// event names and channel types are silently filtered, an invalid mode and
// missing sections reset to defaults. Load applies this to every document
// that parsed; only documents that fail to parse at all get the
// backup-and-reset treatment.
func sanitize(cfg *Config) *Config {
	def := Defaults()
	if cfg == nil {
		return def
	}

	out := *cfg

	if out.Version == "" {
		out.Version = def.Version
	}
	if out.Mode != ModeNormal && out.Mode != ModeSilent {
		out.Mode = def.Mode
	}

	if out.EnabledEvents == nil {
		out.EnabledEvents = def.EnabledEvents
	} else {
		kept := make([]hookevent.EventType, 0, len(out.EnabledEvents))
		for _, e := range out.EnabledEvents {
			if hookevent.Known(string(e)) {
				kept = append(kept, e)
			}
		}
		out.EnabledEvents = kept
	}

	if out.Notifications.Type == "" || !channelTypeKnown(out.Notifications.Type, primaryChannelTypes()) {
		out.Notifications.Type = def.Notifications.Type
	}
	if out.Notifications.Desktop == (DesktopSettings{}) {
		out.Notifications.Desktop = def.Notifications.Desktop
	}
	if out.Notifications.DefaultTypes == nil {
		out.Notifications.DefaultTypes = def.Notifications.DefaultTypes
	} else {
		kept := make([]ChannelType, 0, len(out.Notifications.DefaultTypes))
		for _, t := range out.Notifications.DefaultTypes {
			if channelTypeKnown(t, PersistentChannelTypes()) {
				kept = append(kept, t)
			}
		}
		out.Notifications.DefaultTypes = kept
	}

	if out.CreatedAt == "" {
		out.CreatedAt = def.CreatedAt
	}
	out.UpdatedAt = time.Now().Format(time.RFC3339)

	return &out
}
