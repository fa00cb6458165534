package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"cchook/internal/config"
	"cchook/internal/installer"
)

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "initialize configuration and install hooks into Claude Code settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "reinstall over an existing hooks section (foreign hooks are kept)",
			},
		},
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)

			// Load materializes defaults on first run.
			if _, err := d.store.Load(); err != nil {
				return err
			}
			fmt.Printf("Configuration ready: %s\n", d.store.Path())

			inst := installer.New(config.ClaudeSettingsPath(), "", d.log)
			report, err := inst.Install(c.Bool("force"))
			if err != nil {
				if errors.Is(err, installer.ErrHooksExist) {
					return fmt.Errorf("%w; rerun with --force to replace them", err)
				}
				return err
			}
			if report.BackupPath != "" {
				fmt.Printf("Previous settings backed up: %s\n", report.BackupPath)
			}
			fmt.Printf("Hooks installed: %s\n", inst.SettingsPath())

			if v := inst.Verify(); !v.Success {
				return fmt.Errorf("installed hooks failed verification: %s", v.Error)
			}
			fmt.Println("Setup complete. Claude Code will now send notifications through cchook.")
			return nil
		},
	}
}

func uninstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "uninstall",
		Usage: "remove cchook hooks from Claude Code settings",
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)

			inst := installer.New(config.ClaudeSettingsPath(), "", d.log)
			report, err := inst.Uninstall()
			if err != nil {
				return err
			}
			if report.BackupPath != "" {
				fmt.Printf("Settings backed up: %s\n", report.BackupPath)
			}
			fmt.Printf("Hooks removed from %s\n", inst.SettingsPath())
			fmt.Printf("Configuration left in place: %s\n", d.store.Path())
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show configuration and installation state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "include the full configuration document",
			},
		},
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)

			cfg, err := d.store.Get()
			if err != nil {
				return err
			}

			fmt.Printf("Config file:     %s%s\n", d.store.Path(), missingSuffix(d.store.Path()))
			fmt.Printf("Hook log:        %s%s\n", c.String("log-file"), missingSuffix(c.String("log-file")))
			fmt.Printf("Mode:            %s\n", cfg.Mode)
			fmt.Printf("Primary channel: %s\n", cfg.Notifications.Type)
			fmt.Printf("Dispatch to:     %s\n", channelList(cfg))
			fmt.Printf("Enabled events:  %d of %d\n", len(cfg.EnabledEvents), len(allEventNames()))
			for _, ev := range cfg.EnabledEvents {
				fmt.Printf("  - %s\n", ev)
			}

			inst := installer.New(config.ClaudeSettingsPath(), "", d.log)
			st := inst.Status()
			if st.Installed {
				fmt.Printf("Hooks:           installed (%s)\n", st.SettingsPath)
			} else {
				fmt.Printf("Hooks:           not installed (%s)\n", st.Error)
			}

			if c.Bool("verbose") {
				doc, err := config.Pretty(cfg)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s\n", doc)
			}

			if len(cfg.Notifications.DefaultTypes) == 0 {
				fmt.Println("\nWarning: no default channels configured; events will dispatch nowhere.")
			}
			if errs := config.Validate(cfg); len(errs) > 0 {
				fmt.Println("\nConfiguration problems:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
			}
			return nil
		},
	}
}

func missingSuffix(path string) string {
	if _, err := os.Stat(path); err != nil {
		return " (missing)"
	}
	return ""
}

func channelList(cfg *config.Config) string {
	if len(cfg.Notifications.DefaultTypes) == 0 {
		return "(none)"
	}
	out := ""
	for i, ch := range cfg.Notifications.DefaultTypes {
		if i > 0 {
			out += ", "
		}
		out += string(ch)
	}
	return out
}
