package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"cchook/internal/config"
	"cchook/internal/dispatch"
	"cchook/internal/notify"
	"cchook/pkg/logx"
)

// dispatchTimeout is a backstop for invocations without an external bound,
// such as manually piped input. Installed hooks declare a shorter per-hook
// timeout that the calling tool enforces, so under Claude Code the external
// kill fires first.
const dispatchTimeout = 25 * time.Second

func hookCommand() *cli.Command {
	return &cli.Command{
		Name:   "hook",
		Usage:  "read one hook event from stdin and dispatch it (called by Claude Code)",
		Action: runHook,
	}
}

// stdinPiped reports whether stdin carries piped data rather than a
// terminal. Invoking cchook with no subcommand but piped input dispatches,
// so a bare `cchook` in a hook command line still works.
func stdinPiped() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice == 0
}

func runHook(c *cli.Context) error {
	// Machine invocation: diagnostics go to a file, never the terminal.
	// stdout/stderr stay empty on success.
	log := logx.New(logx.Config{
		Level: c.String("log-level"),
		File: logx.FileConfig{
			Enabled: true,
			Path:    filepath.Join(config.Dir(), "cchook.log"),
		},
	})
	defer log.Close()

	store := config.NewStore(c.String("config"), log)
	factory := notify.NewFactory(log)
	hookLog := logx.NewHookLog(c.String("log-file"))
	d := dispatch.New(store, factory, hookLog, log)

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Error("reading hook input", logx.Err(err))
		return cli.Exit("cchook: reading stdin: "+err.Error(), 1)
	}

	ctx, cancel := context.WithTimeout(c.Context, dispatchTimeout)
	defer cancel()

	result := d.DispatchRaw(ctx, raw)
	if !result.Success {
		log.Warn("dispatch failed",
			logx.String("event", result.EventType),
			logx.String("error", result.Error))
		// One diagnostic line for the calling tool's log; success stays silent.
		return cli.Exit("cchook: "+result.Error, 1)
	}
	return nil
}
