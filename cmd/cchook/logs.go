package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"cchook/internal/logtail"
)

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "show the hook dispatch log",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "number of trailing lines to show",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "keep streaming new lines until interrupted",
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "truncate the log instead of showing it",
			},
		},
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)
			t := logtail.New(c.String("log-file"), d.log)

			if c.Bool("clear") {
				if err := t.Clear(); err != nil {
					return err
				}
				fmt.Printf("Cleared %s\n", t.Path())
				return nil
			}

			if err := t.ShowLast(os.Stdout, c.Int("lines")); err != nil {
				return err
			}
			if !c.Bool("follow") {
				return nil
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return t.Follow(ctx, os.Stdout)
		},
	}
}
