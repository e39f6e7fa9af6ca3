package activity

import (
	"context"
	"errors"
	"testing"
)

func TestBuildLoaderFailedEventIncludesFieldMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := ModelEventInput{
		ActorID:    " actor ",
		ModelID:    "m-1",
		ModelName:  "related-changes",
		Field:      "relatedChanges",
		Generation: 4,
		Err:        errors.New("502 bad gateway"),
		Metadata:   meta,
		Channel:    " reactive ",
	}

	event := BuildLoaderFailedEvent(input)

	if event.Verb != VerbLoaderFailed {
		t.Fatalf("expected verb %s got %s", VerbLoaderFailed, event.Verb)
	}
	if event.ObjectType != ObjectTypeLoader || event.ObjectID != "m-1/relatedChanges" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.Channel != "reactive" {
		t.Fatalf("unexpected trimmed fields: %+v", event)
	}
	if event.Metadata["field"] != "relatedChanges" || event.Metadata["generation"] != uint64(4) {
		t.Fatalf("expected field metadata, got %+v", event.Metadata)
	}
	if event.Metadata["error"] != "502 bad gateway" || event.Metadata["model_name"] != "related-changes" {
		t.Fatalf("expected error metadata, got %+v", event.Metadata)
	}
	if _, ok := meta["field"]; ok {
		t.Fatalf("input metadata should not be mutated")
	}
}

func TestBuildModelDisposedEventUsesModelID(t *testing.T) {
	event := BuildModelDisposedEvent(ModelEventInput{ModelID: "m-9", Field: "ignored"})
	if event.ObjectType != ObjectTypeModel || event.ObjectID != "m-9" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
}

func TestBuildModelEventFallsBackToObjectType(t *testing.T) {
	event := BuildLoaderUnavailableEvent(ModelEventInput{})
	if event.ObjectID != ObjectTypeLoader {
		t.Fatalf("expected object type fallback, got %q", event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected nil metadata, got %+v", event.Metadata)
	}
}

func TestModelEventsFlowThroughEmitter(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	err := emitter.Emit(context.Background(), BuildLoaderGuardFailedEvent(ModelEventInput{ModelID: "m-2", Field: "sameTopicChanges"}))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != "reactive" {
		t.Fatalf("expected one event on the default channel, got %+v", capture.Events)
	}
}
