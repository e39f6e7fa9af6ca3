package reactive

import (
	"context"

	"github.com/goliatone/go-reactive/pkg/activity"
)

// WithActivityHooks attaches activity hooks to the model configuration.
// Hooks are cloned and nil entries dropped to preserve immutability.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *modelConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a cloned slice of activity hooks configured on the
// model. The returned slice can be safely mutated by the caller.
func (m *Model[S]) ActivityHooks() activity.Hooks {
	if m == nil {
		return nil
	}
	return cloneActivityHooks(m.cfg.activityHooks)
}

func newActivityEmitter(cfg modelConfig) *activity.Emitter {
	config := activity.Config{Enabled: len(cfg.activityHooks) > 0}
	if cfg.activityConfig != nil {
		config = *cfg.activityConfig
	}
	return activity.NewEmitter(cfg.activityHooks, config)
}

func (m *Model[S]) emit(event activity.Event) {
	if !m.emitter.Enabled() {
		return
	}
	if err := m.emitter.Emit(context.Background(), event); err != nil {
		m.log(LogEvent{Event: EventActivityFailed, Err: err})
	}
}

func (m *Model[S]) eventInput(field string, generation uint64, err error) activity.ModelEventInput {
	return activity.ModelEventInput{
		ModelID:    m.id,
		ModelName:  m.cfg.name,
		Field:      field,
		Generation: generation,
		Err:        err,
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
