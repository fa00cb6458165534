package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"cchook/internal/config"
	"cchook/pkg/logx"
)

// ConsoleNotifier prints the notification to stdout. It survives from the
// tool's early versions as the CLI-only channel and as the factory's legacy
// fallback; a hook dispatch never selects it by default.
type ConsoleNotifier struct {
	out           io.Writer
	showTimestamp bool
	now           func() time.Time
}

func NewConsole(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = logx.Stdout()
	}
	return &ConsoleNotifier{out: out, showTimestamp: true, now: time.Now}
}

func (c *ConsoleNotifier) Name() config.ChannelType { return config.ChannelConsole }

func (c *ConsoleNotifier) Send(_ context.Context, p Payload) DeliveryOutcome {
	if p.IsZero() {
		return failMsg("notification requires a message or a title")
	}

	line := p.Flatten()
	if c.showTimestamp {
		line = fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), line)
	}
	if _, err := fmt.Fprintln(c.out, line); err != nil {
		return fail(err)
	}
	return ok()
}
