package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-reactive/pkg/activity"
	"github.com/goliatone/go-reactive/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsLoaderFailure(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	modelID := uuid.New()
	userID := uuid.New()

	event := activity.BuildLoaderFailedEvent(activity.ModelEventInput{
		UserID:     userID.String(),
		ModelID:    modelID.String(),
		ModelName:  "related-changes",
		Field:      "cherryPicks",
		Generation: 3,
		Err:        errors.New("503"),
		Channel:    "ui",
		OccurredAt: now,
	})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}

	record := sink.records[0]
	if record.UserID != userID || record.ActorID != uuid.Nil || record.TenantID != uuid.Nil {
		t.Fatalf("unexpected ids: %+v", record)
	}
	if record.Verb != activity.VerbLoaderFailed || record.ObjectType != activity.ObjectTypeLoader || record.ObjectID != modelID.String() {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "ui" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel or time: %+v", record)
	}
	wantData := map[string]any{
		"model_name": "related-changes",
		"field":      "cherryPicks",
		"generation": uint64(3),
		"error":      "503",
	}
	if diff := cmp.Diff(wantData, record.Data); diff != "" {
		t.Fatalf("record data mismatch (-want +got):\n%s", diff)
	}
}

func TestHookNotifySkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{Verb: "model.disposed"})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for incomplete event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestampAndPropagatesErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.BuildModelDisposedEvent(activity.ModelEventInput{ModelID: "m-1"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected one timestamped record, got %+v", sink.records)
	}
	if sink.records[0].ObjectID != "m-1" || sink.records[0].Data["field"] != nil {
		t.Fatalf("unexpected model record: %+v", sink.records[0])
	}
}

func TestHookNotifyFiltersVerbs(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{"model.loader.*"}}

	events := []activity.Event{
		activity.BuildModelDisposedEvent(activity.ModelEventInput{ModelID: "m-1"}),
		activity.BuildLoaderFailedEvent(activity.ModelEventInput{ModelID: "m-1", Field: "cherryPicks"}),
		activity.BuildLoaderUnavailableEvent(activity.ModelEventInput{ModelID: "m-1", Field: "conflictingChanges"}),
	}
	for _, event := range events {
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	var fields []any
	for _, record := range sink.records {
		fields = append(fields, record.Data["field"])
	}
	if diff := cmp.Diff([]any{"cherryPicks", "conflictingChanges"}, fields); diff != "" {
		t.Fatalf("forwarded fields mismatch (-want +got):\n%s", diff)
	}
}
