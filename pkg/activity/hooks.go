package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event is one model activity occurrence fanned out to hooks. IDs are plain
// strings; sinks that need typed IDs parse them.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event carries the fields every sink requires.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes the event and forwards it to every hook. Invalid events
// are dropped; hook errors are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Filter forwards only events whose verb matches one of patterns. A pattern
// ending in ".*" matches every verb under that prefix.
func Filter(hook ActivityHook, patterns ...string) ActivityHook {
	verbs := Verbs(patterns)
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil || !verbs.Match(event.Verb) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

// Verbs is a list of verb patterns. An empty list matches everything.
type Verbs []string

// Match reports whether verb is selected by the list.
func (v Verbs) Match(verb string) bool {
	if len(v) == 0 {
		return true
	}
	for _, pattern := range v {
		pattern = strings.TrimSpace(pattern)
		if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
			if strings.HasPrefix(verb, prefix+".") {
				return true
			}
			continue
		}
		if pattern == verb {
			return true
		}
	}
	return false
}

// NormalizeEvent trims identifiers, clones metadata and stamps the time.
func NormalizeEvent(event Event) Event {
	out := event
	for _, field := range []*string{&out.Verb, &out.ActorID, &out.UserID, &out.TenantID, &out.ObjectType, &out.ObjectID, &out.Channel} {
		*field = strings.TrimSpace(*field)
	}
	out.Metadata = cloneMap(event.Metadata)
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
