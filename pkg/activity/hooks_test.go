package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"field": "cherryPicks"}
	evt := Event{
		Verb:       " model.loader.failed ",
		UserID:     " user ",
		ObjectType: " model.loader ",
		ObjectID:   " m-42/cherryPicks ",
		Channel:    " reactive ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if !got.Valid() || got.Verb != "model.loader.failed" || got.ObjectID != "m-42/cherryPicks" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.UserID != "user" || got.Channel != "reactive" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["field"] = "changed"
	if meta["field"] != "cherryPicks" {
		t.Fatalf("expected original metadata untouched: %+v", meta)
	}
}

func TestHooksNotifyDropsInvalidEvents(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: "model.disposed"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Snapshot()) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Snapshot()))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1, boom2 := errors.New("boom1"), errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context falls back to Background
	err := hooks.Notify(nil, Event{Verb: VerbModelDisposed, ObjectType: ObjectTypeModel, ObjectID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Snapshot()) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Snapshot()))
	}
}

func TestVerbsMatch(t *testing.T) {
	cases := []struct {
		verbs Verbs
		verb  string
		want  bool
	}{
		{nil, VerbModelDisposed, true},
		{Verbs{VerbLoaderFailed}, VerbLoaderFailed, true},
		{Verbs{VerbLoaderFailed}, VerbLoaderUnavailable, false},
		{Verbs{"model.loader.*"}, VerbLoaderGuardFailed, true},
		{Verbs{"model.loader.*"}, "model.loader", false},
		{Verbs{" model.* "}, VerbModelDisposed, true},
	}
	for _, tc := range cases {
		if got := tc.verbs.Match(tc.verb); got != tc.want {
			t.Fatalf("%v.Match(%q): expected %v, got %v", tc.verbs, tc.verb, tc.want, got)
		}
	}
}

func TestFilterForwardsMatchingVerbs(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{Filter(capture, VerbLoaderFailed)}

	for _, event := range []Event{
		BuildLoaderUnavailableEvent(ModelEventInput{ModelID: "m", Field: "a"}),
		BuildLoaderFailedEvent(ModelEventInput{ModelID: "m", Field: "a"}),
		BuildModelDisposedEvent(ModelEventInput{ModelID: "m"}),
	} {
		if err := hooks.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if diff := cmp.Diff([]string{VerbLoaderFailed}, capture.Verbs()); diff != "" {
		t.Fatalf("verbs mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := BuildModelDisposedEvent(ModelEventInput{ModelID: "1"})

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without hooks to be disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Snapshot()
	if len(events) != 1 || events[0].Channel != DefaultChannel {
		t.Fatalf("expected one event on the default channel, got %+v", events)
	}
}

func TestEmitterPreservesExplicitChannelAndTime(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), BuildModelDisposedEvent(ModelEventInput{
		ModelID:    "1",
		Channel:    "custom",
		OccurredAt: at,
	}))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Snapshot()[0]
	if got.Channel != "custom" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit channel and time preserved, got %+v", got)
	}
}

func TestEmitterTimeoutBoundsHooks(t *testing.T) {
	var deadline bool
	emitter := NewEmitter(Hooks{HookFunc(func(ctx context.Context, _ Event) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})}, Config{Enabled: true, Timeout: 10 * time.Millisecond})

	err := emitter.Emit(context.Background(), BuildModelDisposedEvent(ModelEventInput{ModelID: "1"}))
	if !deadline || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected hook bounded by deadline, got deadline=%v err=%v", deadline, err)
	}
}
