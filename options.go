package reactive

import (
	"context"
	"strings"

	"github.com/goliatone/go-reactive/pkg/activity"
)

// Option configures a Model.
type Option func(*modelConfig)

type modelConfig struct {
	id             string
	name           string
	logger         Logger
	activityHooks  activity.Hooks
	activityConfig *activity.Config
	baseContext    context.Context
}

func applyOptions(opts []Option) modelConfig {
	cfg := modelConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithModelID overrides the generated model identifier.
func WithModelID(id string) Option {
	return func(cfg *modelConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// WithName labels the model in logs and activity events.
func WithName(name string) Option {
	return func(cfg *modelConfig) {
		cfg.name = strings.TrimSpace(name)
	}
}

// WithLogger attaches a logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *modelConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithBaseContext sets the parent context of every fetch. Cancelling it
// cancels in-flight fetches without disposing the model.
func WithBaseContext(ctx context.Context) Option {
	return func(cfg *modelConfig) {
		cfg.baseContext = ctx
	}
}

// WithActivityConfig overrides the emitter configuration. By default
// emission is enabled whenever hooks are configured.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *modelConfig) {
		c := config
		cfg.activityConfig = &c
	}
}
