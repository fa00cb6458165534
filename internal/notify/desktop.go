package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"cchook/internal/config"
	"cchook/pkg/logx"
)

// commandRunner executes one OS command and returns stdout/stderr.
// Split out so tests capture the built command instead of spawning it.
type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.String(), errb.String(), err
}

// DesktopNotifier posts a native desktop notification with a single OS
// command per send: osascript on macOS, notify-send elsewhere.
//
// Every text field passes through SanitizeText before it lands in the
// command: the osascript body is a quoted string and unescaped quotes or
// newlines would break out of it.
type DesktopNotifier struct {
	defaults config.DesktopSettings
	goos     string
	run      commandRunner
	log      logx.Logger
}

func NewDesktop(set config.DesktopSettings, log logx.Logger) *DesktopNotifier {
	if set.Title == "" {
		set.Title = "Claude Code"
	}
	return &DesktopNotifier{
		defaults: set,
		goos:     runtime.GOOS,
		run:      execRunner,
		log:      log,
	}
}

func (d *DesktopNotifier) Name() config.ChannelType { return config.ChannelDesktop }

func (d *DesktopNotifier) Send(ctx context.Context, p Payload) DeliveryOutcome {
	if p.IsZero() {
		return failMsg("notification requires a message or a title")
	}

	// Per-call fields override the configured defaults field-by-field.
	title := p.Title
	if title == "" {
		title = d.defaults.Title
	}
	subtitle := p.Subtitle
	if subtitle == "" {
		subtitle = d.defaults.Subtitle
	}

	title = SanitizeText(title)
	message := SanitizeText(p.Message)
	subtitle = SanitizeText(subtitle)
	sound := SanitizeText(d.defaults.Sound.Resolve())

	var name string
	var args []string
	if d.goos == "darwin" {
		name = "osascript"
		args = []string{"-e", buildDisplayNotification(title, message, subtitle, sound)}
	} else {
		name = "notify-send"
		body := message
		if subtitle != "" {
			body = fmt.Sprintf("%s (%s)", message, subtitle)
		}
		args = []string{title, body}
	}

	_, stderr, err := d.run(ctx, name, args...)
	if stderr != "" {
		// Noise from the OS tool is diagnostic, not a delivery failure.
		d.log.Warn("desktop notifier stderr", logx.String("output", stderr))
	}
	if err != nil {
		return fail(fmt.Errorf("desktop notification failed: %w", err))
	}
	return ok()
}

// buildDisplayNotification assembles the AppleScript statement. Inputs must
// already be sanitized: SanitizeText has escaped quotes and backslashes, so
// the fields are embedded verbatim between plain double quotes.
func buildDisplayNotification(title, message, subtitle, sound string) string {
	script := `display notification "` + message + `"`
	if title != "" {
		script += ` with title "` + title + `"`
	}
	if subtitle != "" {
		script += ` subtitle "` + subtitle + `"`
	}
	if sound != "" {
		script += ` sound name "` + sound + `"`
	}
	return script
}
