// Package usersink forwards model activity into a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-reactive/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts model activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs limits forwarding to matching verbs ("model.loader.*" selects
	// every loader verb); empty forwards everything.
	Verbs []string
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// Non-UUID identifiers become uuid.Nil; a model scoped object ID
// ("<model>/<field>") keeps its model part in ObjectID and its field in Data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if !event.Valid() || !activity.Verbs(h.Verbs).Match(event.Verb) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, Record(event))
}

// Record converts a normalized event into a go-users activity record.
func Record(event activity.Event) usertypes.ActivityRecord {
	data := make(map[string]any, len(event.Metadata)+1)
	for key, value := range event.Metadata {
		data[key] = value
	}
	objectID := event.ObjectID
	if model, field, ok := strings.Cut(objectID, "/"); ok {
		objectID = model
		if _, exists := data["field"]; !exists {
			data["field"] = field
		}
	}
	if len(data) == 0 {
		data = nil
	}
	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   objectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
