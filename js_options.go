package reactive

import "time"

// DefaultJSTimeout bounds a single JS guard evaluation. Guards run on the
// model's event queue, so a runaway script would stall every loader.
const DefaultJSTimeout = 100 * time.Millisecond

type jsOptions struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsOptions)

// JSWithProgramCache shares compiled scripts between evaluators.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithFunctionRegistry exposes registry functions to scripts.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		if registry != nil {
			o.registry = registry.Clone()
		}
	}
}

// JSWithTimeout interrupts scripts running longer than d. Non-positive values
// disable the limit.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.timeout = d
	}
}

func newJSOptions(opts []JSEvaluatorOption) jsOptions {
	o := jsOptions{timeout: DefaultJSTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
