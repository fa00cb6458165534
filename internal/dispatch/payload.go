package dispatch

import (
	"fmt"

	"cchook/internal/hookevent"
	"cchook/internal/notify"
)

// Display strings are already locale-resolved; channels and this table
// never consult a lookup themselves.
const (
	appTitle = "Claude Code"

	promptPreviewMax  = 50
	commandPreviewMax = 30
)

// buildPayload maps one event to its notification content. The rules are a
// fixed table: every branch is a pure function of the event.
//
// The second return is true when the event is valid but deliberately
// produces no notification (unimportant tools on PreToolUse/PostToolUse).
func buildPayload(ev *hookevent.HookEvent) (notify.Payload, bool, error) {
	switch hookevent.EventType(ev.EventName) {
	case hookevent.Notification:
		message := ev.Message
		if message == "" {
			message = "Notification received"
		}
		return notify.Payload{
			Title:    appTitle,
			Message:  message,
			Subtitle: "Attention required",
		}, false, nil

	case hookevent.Stop:
		return notify.Payload{
			Title:    appTitle,
			Message:  "Task completed",
			Subtitle: "Claude has stopped working",
		}, false, nil

	case hookevent.SubagentStop:
		return notify.Payload{
			Title:    appTitle,
			Message:  "Subtask completed",
			Subtitle: "Subagent has finished working",
		}, false, nil

	case hookevent.UserPromptSubmit:
		return notify.Payload{
			Title:    appTitle,
			Message:  "New prompt submitted",
			Subtitle: preview(ev.Prompt, promptPreviewMax),
		}, false, nil

	case hookevent.PreToolUse:
		if !hookevent.ImportantTools[ev.ToolName] {
			return notify.Payload{}, true, nil
		}
		message := fmt.Sprintf("About to execute %s", ev.ToolName)
		if ev.ToolInput != nil {
			switch {
			case ev.ToolName == "Bash" && ev.ToolInput.Command != "":
				message += ": " + preview(ev.ToolInput.Command, commandPreviewMax)
			case (ev.ToolName == "Write" || ev.ToolName == "Edit") && ev.ToolInput.FilePath != "":
				message += ": " + ev.ToolInput.FilePath
			}
		}
		return notify.Payload{
			Title:    appTitle,
			Message:  message,
			Subtitle: "Tool about to execute",
		}, false, nil

	case hookevent.PostToolUse:
		if !hookevent.ImportantTools[ev.ToolName] {
			return notify.Payload{}, true, nil
		}
		if ev.ToolResponse.Succeeded() {
			return notify.Payload{
				Title:    appTitle,
				Message:  fmt.Sprintf("%s executed successfully", ev.ToolName),
				Subtitle: "Tool execution completed",
			}, false, nil
		}
		return notify.Payload{
			Title:    appTitle,
			Message:  fmt.Sprintf("%s execution failed", ev.ToolName),
			Subtitle: "An error occurred during execution",
		}, false, nil

	case hookevent.PreCompact:
		kind := "manual"
		if ev.Trigger == "auto" {
			kind = "automatic"
		}
		return notify.Payload{
			Title:    appTitle,
			Message:  fmt.Sprintf("About to perform %s compression", kind),
			Subtitle: "Context is about to be compressed",
		}, false, nil

	case hookevent.SessionStart:
		return notify.Payload{
			Title:    appTitle,
			Message:  "Session started",
			Subtitle: fmt.Sprintf("Started by: %s", ev.Source),
		}, false, nil

	case hookevent.SessionEnd:
		return notify.Payload{
			Title:    appTitle,
			Message:  "Session ended",
			Subtitle: fmt.Sprintf("Reason: %s", ev.Reason),
		}, false, nil

	default:
		return notify.Payload{}, false, fmt.Errorf("unknown event type: %s", ev.EventName)
	}
}

// preview truncates user text for display, appending "..." only when
// something was cut. Counting runes keeps multibyte prompts intact.
func preview(s string, maxN int) string {
	r := []rune(s)
	if len(r) <= maxN {
		return s
	}
	return string(r[:maxN]) + "..."
}
