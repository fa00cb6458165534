// Package logtail shows, clears, and follows the dispatch log file for the
// `cchook logs` command. It is the sole reader; the writers only append.
package logtail

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"cchook/pkg/logx"
)

// pollInterval is the fallback cadence when fsnotify cannot watch the
// directory (network filesystems, exhausted inotify watches).
const pollInterval = 500 * time.Millisecond

type Tailer struct {
	path string
	log  logx.Logger
}

func New(path string, log logx.Logger) *Tailer {
	return &Tailer{path: path, log: log}
}

func (t *Tailer) Path() string { return t.path }

// ShowLast writes the last n lines of the log to w. A missing file is not
// an error: hooks may simply never have fired.
func (t *Tailer) ShowLast(w io.Writer, n int) error {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	lines := splitLines(string(data))
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

// Clear truncates the log file.
func (t *Tailer) Clear() error {
	err := os.WriteFile(t.path, nil, 0o644)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing log: %w", err)
	}
	return nil
}

// Follow streams new log bytes to w until ctx is done. It prefers fsnotify
// write events on the log's directory and degrades to size polling when no
// watcher can be established. Only size growth is streamed; truncation
// (e.g. `logs --clear` elsewhere) resets the read offset.
func (t *Tailer) Follow(ctx context.Context, w io.Writer) error {
	offset, _ := t.size()

	events, cleanup := t.watch(ctx)
	defer cleanup()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			offset = t.drain(w, offset)
		case <-ticker.C:
			// The ticker doubles as the fallback and as a safety net for
			// coalesced fsnotify events.
			offset = t.drain(w, offset)
		}
	}
}

// watch wires an fsnotify watcher on the log directory, returning a
// notification channel and its cleanup. On any setup failure the channel
// stays silent and polling carries the follow alone.
func (t *Tailer) watch(ctx context.Context) (<-chan struct{}, func()) {
	events := make(chan struct{}, 1)
	noop := func() {}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.log.Debug("fsnotify unavailable, polling only", logx.Err(err))
		return events, noop
	}
	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		t.log.Debug("log watch add failed, polling only", logx.Err(err), logx.String("dir", dir))
		_ = watcher.Close()
		return events, noop
	}

	base := filepath.Base(t.path)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Compare by basename (robust across absolute/relative paths).
				if strings.EqualFold(filepath.Base(ev.Name), base) {
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
						select {
						case events <- struct{}{}:
						default:
						}
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					t.log.Debug("log watch error", logx.Err(err))
				}
			}
		}
	}()

	return events, func() { _ = watcher.Close() }
}

// drain copies bytes past offset to w and returns the new offset.
func (t *Tailer) drain(w io.Writer, offset int64) int64 {
	size, err := t.size()
	if err != nil {
		return offset
	}
	if size < offset {
		// Truncated underneath us; start over from the top.
		offset = 0
	}
	if size == offset {
		return offset
	}

	f, err := os.Open(t.path)
	if err != nil {
		return offset
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset
	}
	n, _ := io.Copy(w, f)
	return offset + n
}

func (t *Tailer) size() (int64, error) {
	st, err := os.Stat(t.path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
