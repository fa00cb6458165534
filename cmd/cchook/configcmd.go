package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"cchook/internal/config"
	"cchook/internal/hookevent"
)

func modeCommand() *cli.Command {
	return &cli.Command{
		Name:      "mode",
		Usage:     "show or set the notification mode",
		ArgsUsage: "[normal|silent]",
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)

			if c.NArg() == 0 {
				cfg, err := d.store.Get()
				if err != nil {
					return err
				}
				fmt.Println(cfg.Mode)
				return nil
			}

			mode := config.Mode(c.Args().First())
			if err := d.store.SetMode(mode); err != nil {
				return err
			}
			if mode == config.ModeSilent {
				fmt.Println("Mode set to silent. All notifications are suppressed; dispatches still log.")
			} else {
				fmt.Println("Mode set to normal.")
			}
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "manage which hook events trigger notifications",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all known events and whether each is enabled",
				Action: func(c *cli.Context) error {
					d := consoleDeps(c)
					cfg, err := d.store.Get()
					if err != nil {
						return err
					}
					enabled := make(map[hookevent.EventType]bool, len(cfg.EnabledEvents))
					for _, ev := range cfg.EnabledEvents {
						enabled[ev] = true
					}
					for _, ev := range hookevent.All() {
						mark := " "
						if enabled[ev] {
							mark = "x"
						}
						fmt.Printf("[%s] %s\n", mark, ev)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "enable notifications for an event",
				ArgsUsage: "<event>",
				Action: func(c *cli.Context) error {
					name, err := eventArg(c)
					if err != nil {
						return err
					}
					d := consoleDeps(c)
					if err := d.store.AddEvent(hookevent.EventType(name)); err != nil {
						return err
					}
					fmt.Printf("Enabled: %s\n", name)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "disable notifications for an event",
				ArgsUsage: "<event>",
				Action: func(c *cli.Context) error {
					name, err := eventArg(c)
					if err != nil {
						return err
					}
					d := consoleDeps(c)
					if err := d.store.RemoveEvent(hookevent.EventType(name)); err != nil {
						return err
					}
					fmt.Printf("Disabled: %s\n", name)
					return nil
				},
			},
		},
	}
}

func eventArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one event name, one of: %s", joinEventNames())
	}
	name := c.Args().First()
	if !hookevent.Known(name) {
		return "", fmt.Errorf("unknown event %q, one of: %s", name, joinEventNames())
	}
	return name, nil
}

func allEventNames() []hookevent.EventType { return hookevent.All() }

func joinEventNames() string {
	out := ""
	for i, ev := range hookevent.All() {
		if i > 0 {
			out += ", "
		}
		out += string(ev)
	}
	return out
}
