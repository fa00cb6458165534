// Package dispatch turns one hook event into zero or more channel
// deliveries and a single aggregated result.
//
// Each process invocation runs the pipeline exactly once:
//
//	RECEIVED → VALIDATED → {SKIPPED | ROUTED} → {DELIVERED | PARTIALLY_DELIVERED | FAILED}
//
// No state crosses invocations; the terminal state becomes the process
// exit code plus one hook-log line.
package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cchook/internal/config"
	"cchook/internal/hookevent"
	"cchook/internal/notify"
	"cchook/pkg/logx"
)

// ChannelResult is one channel's share of a dispatch outcome.
type ChannelResult struct {
	Channel config.ChannelType `json:"channel"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
}

// Result aggregates a whole dispatch. Partial delivery counts as success:
// one working channel is enough to have notified the user.
type Result struct {
	Success   bool            `json:"success"`
	Skipped   bool            `json:"skipped,omitempty"`
	EventType string          `json:"eventType,omitempty"`
	Error     string          `json:"error,omitempty"`
	Channels  []ChannelResult `json:"channels,omitempty"`
}

// ChannelFactory builds one notifier per channel type. *notify.Factory is
// the production implementation.
type ChannelFactory interface {
	Create(channelType config.ChannelType, n config.NotificationsConfig) (notify.Notifier, error)
}

// Dispatcher wires the configuration store, the channel factory and the
// hook log. It holds no per-event state.
type Dispatcher struct {
	store   *config.Store
	factory ChannelFactory
	hookLog *logx.HookLog
	log     logx.Logger

	newID func() string
}

func New(store *config.Store, factory ChannelFactory, hookLog *logx.HookLog, log logx.Logger) *Dispatcher {
	return &Dispatcher{
		store:   store,
		factory: factory,
		hookLog: hookLog,
		log:     log,
		newID:   func() string { return uuid.NewString() },
	}
}

// DispatchRaw parses stdin bytes and dispatches. Unparseable input is a
// failed dispatch logged under the "UNKNOWN" event identifier.
func (d *Dispatcher) DispatchRaw(ctx context.Context, raw []byte) Result {
	ev, err := hookevent.Parse(raw)
	if err != nil {
		result := Result{Success: false, Error: err.Error()}
		d.logLine(d.newID(), "UNKNOWN", nil, result)
		return result
	}
	return d.Dispatch(ctx, ev)
}

// Dispatch runs the full pipeline for one parsed event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *hookevent.HookEvent) Result {
	id := d.newID()

	// VALIDATED: the only hard requirement on the wire record.
	if ev == nil || ev.EventName == "" {
		result := Result{Success: false, Error: "missing event name"}
		d.logLine(id, "UNKNOWN", ev.Redacted(), result)
		return result
	}

	// Configuration soft-fails to defaults; dispatch never dies on I/O.
	cfg, _ := d.store.Get()

	eventType := hookevent.EventType(ev.EventName)

	// SKIPPED is policy, not failure: silent mode and disabled events exit 0.
	if !d.store.IsEventEnabled(eventType) {
		result := Result{Success: true, Skipped: true, EventType: ev.EventName}
		d.log.Debug("event not enabled or silent mode", logx.String("event", ev.EventName))
		d.logLine(id, ev.EventName, ev.Redacted(), result)
		return result
	}

	payload, noop, err := buildPayload(ev)
	if err != nil {
		result := Result{Success: false, EventType: ev.EventName, Error: err.Error()}
		d.logLine(id, ev.EventName, ev.Redacted(), result)
		return result
	}
	if noop {
		result := Result{Success: true, EventType: ev.EventName}
		d.logLine(id, ev.EventName, ev.Redacted(), result)
		return result
	}

	// ROUTED: fan out over the configured default channels.
	channels := cfg.Notifications.DefaultTypes
	results := d.SendTo(ctx, channels, cfg.Notifications, payload)

	result := aggregate(ev.EventName, results)
	d.logLine(id, ev.EventName, ev.Redacted(), result)
	return result
}

// SendTo builds one notifier per requested channel and delivers to every
// constructed one concurrently. A channel that fails to construct is
// recorded as its own failure and never blocks its siblings. The join waits
// for every attempt; there is no early return and no cancellation
// propagation between channels.
func (d *Dispatcher) SendTo(ctx context.Context, channels []config.ChannelType, n config.NotificationsConfig, payload notify.Payload) []ChannelResult {
	results := make([]ChannelResult, len(channels))
	notifiers := make([]notify.Notifier, len(channels))

	for i, ch := range channels {
		results[i] = ChannelResult{Channel: ch}
		nf, err := d.factory.Create(ch, n)
		if err != nil {
			results[i].Error = err.Error()
			d.log.Warn("channel construction failed",
				logx.String("channel", string(ch)), logx.Err(err))
			continue
		}
		notifiers[i] = nf
	}

	var wg sync.WaitGroup
	for i, nf := range notifiers {
		if nf == nil {
			continue
		}
		wg.Add(1)
		go func(i int, nf notify.Notifier) {
			defer wg.Done()
			outcome := nf.Send(ctx, payload)
			results[i].Success = outcome.Success
			results[i].Error = outcome.Error
		}(i, nf)
	}
	wg.Wait()

	return results
}

// aggregate computes the terminal state: DELIVERED when everything worked,
// PARTIALLY_DELIVERED (still success) when at least one channel did,
// FAILED when nothing was attempted or nothing worked.
func aggregate(eventName string, results []ChannelResult) Result {
	out := Result{EventType: eventName, Channels: results}

	if len(results) == 0 {
		out.Error = "no notification channels configured"
		return out
	}

	anyOK := false
	for _, r := range results {
		if r.Success {
			anyOK = true
			break
		}
	}
	if !anyOK {
		out.Error = "all notification channels failed"
		return out
	}

	out.Success = true
	return out
}

func (d *Dispatcher) logLine(id, event string, hookData map[string]any, result Result) {
	if d.hookLog == nil {
		return
	}
	d.hookLog.Append(id, event, hookData, result)
}
