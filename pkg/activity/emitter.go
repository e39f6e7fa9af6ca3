package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel is stamped on events that do not name one.
const DefaultChannel = "reactive"

// Config controls activity emission for a model.
type Config struct {
	Enabled bool
	Channel string
	// Timeout bounds a single Emit. Hooks run on the model's event queue, so a
	// slow sink delays every loader of that model. Zero means no limit.
	Timeout time.Duration
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	timeout time.Duration
}

// NewEmitter constructs an emitter from hooks and configuration. Nil hooks are
// dropped; an emitter without hooks is disabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	var kept Hooks
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	return &Emitter{
		hooks:   kept,
		enabled: cfg.Enabled && len(kept) > 0,
		channel: channel,
		timeout: cfg.Timeout,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards the event to all hooks, applying the default channel.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
