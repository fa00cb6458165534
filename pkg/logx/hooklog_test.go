package logx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHookLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hooks.log")
	h := NewHookLog(path)

	h.Append("id-1", "Stop", map[string]any{"session_id": "abc"}, map[string]any{"success": true})
	h.Append("id-2", "Notification", nil, map[string]any{"success": false})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line not JSON: %v", err)
	}
	for _, key := range []string{"timestamp", "dispatch_id", "event", "hook_data", "result"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("line missing %q: %v", key, entry)
		}
	}
	if entry["event"] != "Stop" {
		t.Fatalf("event = %v", entry["event"])
	}

	// nil hook_data is omitted entirely, not serialized as null.
	// Reset the map: Unmarshal merges into a non-nil map, which would
	// carry over hook_data from the first line.
	entry = nil
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("line not JSON: %v", err)
	}
	if _, ok := entry["hook_data"]; ok {
		t.Fatalf("empty hook_data should be omitted: %v", entry)
	}
}

func TestHookLogSwallowsFailures(t *testing.T) {
	// A directory path cannot be opened for append; Append must not panic
	// and must not error out of its void signature.
	h := NewHookLog(t.TempDir())
	h.Append("id", "Stop", nil, nil)

	var nilLog *HookLog
	nilLog.Append("id", "Stop", nil, nil)
	NewHookLog("").Append("id", "Stop", nil, nil)
}
