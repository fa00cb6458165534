package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"cchook/internal/config"
	"cchook/internal/notify"
	"cchook/pkg/logx"
)

var version = "1.0.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "cchook",
		Usage:   "dispatch Claude Code hook events to notification channels",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the configuration file",
				Value:   config.DefaultPath(),
				EnvVars: []string{"CCHOOK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to the hook dispatch log",
				Value:   config.DefaultLogPath(),
				EnvVars: []string{"CCHOOK_LOG_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "diagnostic log level (trace, debug, info, warn, error)",
				Value:   config.LoadEnv().LogLevel,
				EnvVars: []string{"CCHOOK_LOG_LEVEL"},
			},
		},
		// A bare `cchook` with piped stdin behaves like `cchook hook`.
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 && stdinPiped() {
				return runHook(c)
			}
			return cli.ShowAppHelp(c)
		},
		Commands: []*cli.Command{
			hookCommand(),
			setupCommand(),
			uninstallCommand(),
			statusCommand(),
			modeCommand(),
			eventsCommand(),
			notifyCommand(),
			testCommand(),
			logsCommand(),
		},
	}
}

// deps is the wiring every interactive command shares. The hook command
// builds its own, file-backed variant so machine invocations stay quiet.
type deps struct {
	log     logx.Logger
	store   *config.Store
	factory *notify.Factory
}

func consoleDeps(c *cli.Context) *deps {
	log := logx.NewConsole(c.String("log-level"))
	return &deps{
		log:     log,
		store:   config.NewStore(c.String("config"), log),
		factory: notify.NewFactory(log),
	}
}

