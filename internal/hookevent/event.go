package hookevent

// EventType identifies one lifecycle event emitted by Claude Code.
// The enumeration is closed: hooks for anything else are never installed
// and dispatching anything else is an error.
type EventType string

const (
	Notification     EventType = "Notification"
	Stop             EventType = "Stop"
	SubagentStop     EventType = "SubagentStop"
	UserPromptSubmit EventType = "UserPromptSubmit"
	PreToolUse       EventType = "PreToolUse"
	PostToolUse      EventType = "PostToolUse"
	PreCompact       EventType = "PreCompact"
	SessionStart     EventType = "SessionStart"
	SessionEnd       EventType = "SessionEnd"
)

// All returns every known event type in display order.
func All() []EventType {
	return []EventType{
		Notification,
		Stop,
		SubagentStop,
		UserPromptSubmit,
		PreToolUse,
		PostToolUse,
		PreCompact,
		SessionStart,
		SessionEnd,
	}
}

// Known reports whether name is a member of the EventType enumeration.
func Known(name string) bool {
	for _, e := range All() {
		if string(e) == name {
			return true
		}
	}
	return false
}

// ImportantTools are the tool names worth interrupting the user for on
// PreToolUse/PostToolUse. Everything else is a no-op.
var ImportantTools = map[string]bool{
	"Bash":      true,
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
}
