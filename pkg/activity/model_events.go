package activity

import (
	"strings"
	"time"
)

// Verbs emitted by reactive models.
const (
	VerbLoaderFailed      = "model.loader.failed"
	VerbLoaderUnavailable = "model.loader.unavailable"
	VerbLoaderGuardFailed = "model.loader.guard_failed"
	VerbModelDisposed     = "model.disposed"
)

// Object types used by model events.
const (
	ObjectTypeModel  = "model"
	ObjectTypeLoader = "model.loader"
)

// ModelEventInput describes the common fields for model lifecycle events.
type ModelEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ModelID    string
	ModelName  string
	Field      string
	Generation uint64
	Err        error
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildLoaderFailedEvent reports a fetch failure written into a field.
func BuildLoaderFailedEvent(input ModelEventInput) Event {
	return buildModelEvent(VerbLoaderFailed, ObjectTypeLoader, input)
}

// BuildLoaderUnavailableEvent reports a field marked unavailable by its guard.
func BuildLoaderUnavailableEvent(input ModelEventInput) Event {
	return buildModelEvent(VerbLoaderUnavailable, ObjectTypeLoader, input)
}

// BuildLoaderGuardFailedEvent reports a guard that could not be evaluated.
func BuildLoaderGuardFailedEvent(input ModelEventInput) Event {
	return buildModelEvent(VerbLoaderGuardFailed, ObjectTypeLoader, input)
}

// BuildModelDisposedEvent reports a model teardown.
func BuildModelDisposedEvent(input ModelEventInput) Event {
	return buildModelEvent(VerbModelDisposed, ObjectTypeModel, input)
}

func buildModelEvent(verb, objectType string, input ModelEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.ModelName != "" {
		metadata = ensureMetadata(metadata)
		metadata["model_name"] = input.ModelName
	}
	if input.Field != "" {
		metadata = ensureMetadata(metadata)
		metadata["field"] = input.Field
	}
	if input.Generation > 0 {
		metadata = ensureMetadata(metadata)
		metadata["generation"] = input.Generation
	}
	if input.Err != nil {
		metadata = ensureMetadata(metadata)
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.ModelID)
	if objectID != "" && objectType == ObjectTypeLoader && input.Field != "" {
		objectID = objectID + "/" + input.Field
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Field)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
