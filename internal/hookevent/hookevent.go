package hookevent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// HookEvent is the single JSON object Claude Code writes to our stdin,
// one per hook invocation. Only hook_event_name is guaranteed; the rest
// varies by event type.
type HookEvent struct {
	EventName string `json:"hook_event_name"`
	SessionID string `json:"session_id,omitempty"`

	// Notification
	Message string `json:"message,omitempty"`

	// UserPromptSubmit
	Prompt string `json:"prompt,omitempty"`

	// PreToolUse / PostToolUse
	ToolName     string        `json:"tool_name,omitempty"`
	ToolInput    *ToolInput    `json:"tool_input,omitempty"`
	ToolResponse *ToolResponse `json:"tool_response,omitempty"`

	// PreCompact
	Trigger string `json:"trigger,omitempty"`

	// SessionStart / SessionEnd
	Source string `json:"source,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ToolInput carries the subset of tool arguments the payload rules read.
// Unknown keys are preserved nowhere: this record is ephemeral.
type ToolInput struct {
	Command  string `json:"command,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// ToolResponse reports tool completion. Success defaults to true when the
// field is absent: only an explicit false counts as failure.
type ToolResponse struct {
	Success *bool `json:"success,omitempty"`
}

// Succeeded applies the absence-is-success rule.
func (r *ToolResponse) Succeeded() bool {
	return r == nil || r.Success == nil || *r.Success
}

var ErrEmptyInput = errors.New("no input data received")

// Parse decodes one hook event from raw stdin bytes. It tolerates unknown
// fields (the external tool adds them between releases) but rejects empty
// input, malformed JSON and trailing tokens.
func Parse(raw []byte) (*HookEvent, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyInput
	}

	var ev HookEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&ev); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid input: trailing data")
		}
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return &ev, nil
}

const (
	redactPromptMax  = 200
	redactCommandMax = 120
)

// Redacted returns a log-safe view of the event: long user text is
// truncated and tool responses reduced to their success flag. The log line
// is the only place event data outlives the process, so this is the single
// choke point for what gets persisted.
func (ev *HookEvent) Redacted() map[string]any {
	if ev == nil {
		return nil
	}
	out := map[string]any{}
	if ev.EventName != "" {
		out["hook_event_name"] = ev.EventName
	}
	if ev.SessionID != "" {
		out["session_id"] = ev.SessionID
	}
	if ev.Message != "" {
		out["message"] = truncate(ev.Message, redactPromptMax)
	}
	if ev.Prompt != "" {
		out["prompt"] = truncate(ev.Prompt, redactPromptMax)
	}
	if ev.ToolName != "" {
		out["tool_name"] = ev.ToolName
	}
	if ev.ToolInput != nil {
		ti := map[string]any{}
		if ev.ToolInput.Command != "" {
			ti["command"] = truncate(ev.ToolInput.Command, redactCommandMax)
		}
		if ev.ToolInput.FilePath != "" {
			ti["file_path"] = ev.ToolInput.FilePath
		}
		if len(ti) > 0 {
			out["tool_input"] = ti
		}
	}
	if ev.ToolResponse != nil {
		out["tool_response"] = map[string]any{"success": ev.ToolResponse.Succeeded()}
	}
	if ev.Trigger != "" {
		out["trigger"] = ev.Trigger
	}
	if ev.Source != "" {
		out["source"] = ev.Source
	}
	if ev.Reason != "" {
		out["reason"] = ev.Reason
	}
	return out
}

// truncate cuts on rune boundaries so multibyte text never lands in the
// log as invalid UTF-8.
func truncate(s string, maxN int) string {
	r := []rune(s)
	if maxN <= 0 || len(r) <= maxN {
		return s
	}
	if maxN < 4 {
		return string(r[:maxN])
	}
	return string(r[:maxN-3]) + "..."
}
