package logx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// HookLog appends one JSON line per hook dispatch to the per-user log file.
// The line shape is fixed because `cchook logs` and external tooling parse it:
//
//	{"timestamp":"...","dispatch_id":"...","event":"...","hook_data":{...},"result":{...}}
//
// A dispatch outcome must never depend on logging, so every failure here is
// swallowed.
type HookLog struct {
	path string
}

func NewHookLog(path string) *HookLog {
	return &HookLog{path: path}
}

func (h *HookLog) Path() string { return h.path }

type hookLogLine struct {
	Timestamp  string `json:"timestamp"`
	DispatchID string `json:"dispatch_id,omitempty"`
	Event      string `json:"event"`
	HookData   any    `json:"hook_data,omitempty"`
	Result     any    `json:"result"`
}

// Append writes one dispatch record. Errors are intentionally dropped.
func (h *HookLog) Append(dispatchID, event string, hookData, result any) {
	if h == nil || h.path == "" {
		return
	}

	line := hookLogLine{
		Timestamp:  time.Now().Format(time.RFC3339),
		DispatchID: dispatchID,
		Event:      event,
		HookData:   hookData,
		Result:     result,
	}

	b, err := json.Marshal(line)
	if err != nil {
		return
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	// Single write keeps concurrent invocations line-atomic on POSIX.
	_, _ = f.Write(b)
}
