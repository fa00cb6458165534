package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"cchook/internal/config"
	"cchook/internal/notify"
)

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "send an ad-hoc notification through configured channels",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    "notification body",
				Required: true,
			},
			&cli.StringFlag{Name: "title", Usage: "notification title"},
			&cli.StringFlag{Name: "subtitle", Usage: "notification subtitle"},
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "channel to send through (repeatable; default: configured channels)",
			},
			&cli.BoolFlag{Name: "at-all", Usage: "DingTalk: mention everyone"},
			&cli.StringSliceFlag{Name: "at-user", Usage: "DingTalk: user ID to mention (repeatable)"},
			&cli.StringSliceFlag{Name: "at-mobile", Usage: "DingTalk: mobile number to mention (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)
			cfg, err := d.store.Get()
			if err != nil {
				return err
			}

			payload := notify.Payload{
				Title:    c.String("title"),
				Message:  c.String("message"),
				Subtitle: c.String("subtitle"),
			}
			at := notify.AtOptions{
				UserIDs: c.StringSlice("at-user"),
				Mobiles: c.StringSlice("at-mobile"),
				IsAtAll: c.Bool("at-all"),
			}

			channels := pickChannels(c.StringSlice("type"), cfg)
			if len(channels) == 0 {
				return fmt.Errorf("no notification channels configured; set one with `cchook status` guidance or pass --type")
			}

			outcomes := fanOut(c.Context, channels, func(ctx context.Context, ch config.ChannelType) notify.DeliveryOutcome {
				n, err := d.factory.Create(ch, cfg.Notifications)
				if err != nil {
					return notify.DeliveryOutcome{Error: err.Error()}
				}
				if dt, ok := n.(*notify.DingTalkNotifier); ok && hasMentions(at) {
					return dt.SendWithAt(ctx, payload, at)
				}
				return n.Send(ctx, payload)
			})

			return reportOutcomes(channels, outcomes)
		},
	}
}

func testCommand() *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "send a self-test notification to verify channel settings",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "channel to test (repeatable; default: configured channels)",
			},
		},
		Action: func(c *cli.Context) error {
			d := consoleDeps(c)
			cfg, err := d.store.Get()
			if err != nil {
				return err
			}

			channels := pickChannels(c.StringSlice("type"), cfg)
			if len(channels) == 0 {
				return fmt.Errorf("no notification channels configured")
			}

			outcomes := fanOut(c.Context, channels, func(ctx context.Context, ch config.ChannelType) notify.DeliveryOutcome {
				return d.factory.TestChannel(ctx, ch, cfg.Notifications)
			})

			return reportOutcomes(channels, outcomes)
		},
	}
}

// pickChannels resolves the channel list: an explicit --type wins, then the
// configured dispatch list, then the primary channel.
func pickChannels(flags []string, cfg *config.Config) []config.ChannelType {
	if len(flags) > 0 {
		out := make([]config.ChannelType, len(flags))
		for i, f := range flags {
			out[i] = config.ChannelType(f)
		}
		return out
	}
	if len(cfg.Notifications.DefaultTypes) > 0 {
		return cfg.Notifications.DefaultTypes
	}
	if cfg.Notifications.Type != "" {
		return []config.ChannelType{cfg.Notifications.Type}
	}
	return nil
}

// fanOut delivers to every channel concurrently and waits for all of them.
// Failures land in the outcome slice, never in the group error, so one bad
// channel cannot cancel its siblings.
func fanOut(ctx context.Context, channels []config.ChannelType, send func(context.Context, config.ChannelType) notify.DeliveryOutcome) []notify.DeliveryOutcome {
	outcomes := make([]notify.DeliveryOutcome, len(channels))
	g, ctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			outcomes[i] = send(ctx, ch)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func reportOutcomes(channels []config.ChannelType, outcomes []notify.DeliveryOutcome) error {
	failed := 0
	for i, ch := range channels {
		if outcomes[i].Success {
			fmt.Printf("  %-10s ok\n", ch)
		} else {
			failed++
			fmt.Printf("  %-10s failed: %s\n", ch, outcomes[i].Error)
		}
	}
	if failed == len(channels) {
		return fmt.Errorf("all %d channel(s) failed", failed)
	}
	if failed > 0 {
		fmt.Printf("%d of %d channel(s) failed\n", failed, len(channels))
	}
	return nil
}

func hasMentions(at notify.AtOptions) bool {
	return at.IsAtAll || len(at.UserIDs) > 0 || len(at.Mobiles) > 0
}
