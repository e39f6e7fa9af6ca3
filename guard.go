package reactive

import (
	"fmt"
	"strings"
)

// Verdict is a guard decision for one combined tuple.
type Verdict uint8

const (
	// Proceed runs the fetch.
	Proceed Verdict = iota
	// Hold leaves the field untouched; inputs are not ready yet.
	Hold
	// MarkUnavailable writes the unavailable sentinel.
	MarkUnavailable
	// Reset writes the not loaded sentinel, clearing a stale value.
	Reset
)

func (v Verdict) String() string {
	switch v {
	case Proceed:
		return "proceed"
	case Hold:
		return "hold"
	case MarkUnavailable:
		return "unavailable"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("verdict(%d)", uint8(v))
	}
}

// Guard decides whether a loader should fetch for the latest tuple.
type Guard interface {
	Check(args Args) (Verdict, error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(args Args) Verdict

// Check implements Guard.
func (fn GuardFunc) Check(args Args) (Verdict, error) {
	if fn == nil {
		return Proceed, nil
	}
	return fn(args), nil
}

// Always proceeds on every tuple.
func Always() Guard {
	return GuardFunc(func(Args) Verdict { return Proceed })
}

// RequireArgs proceeds when every named argument is present and returns
// onMissing otherwise.
func RequireArgs(onMissing Verdict, names ...string) Guard {
	required := append([]string(nil), names...)
	return GuardFunc(func(args Args) Verdict {
		if args.Present(required...) {
			return Proceed
		}
		return onMissing
	})
}

// AllOf evaluates guards in order and returns the first verdict other than
// Proceed.
func AllOf(guards ...Guard) Guard {
	chain := make([]Guard, 0, len(guards))
	for _, guard := range guards {
		if guard != nil {
			chain = append(chain, guard)
		}
	}
	return guardChain(chain)
}

type guardChain []Guard

func (c guardChain) Check(args Args) (Verdict, error) {
	for _, guard := range c {
		verdict, err := guard.Check(args)
		if err != nil {
			return Hold, err
		}
		if verdict != Proceed {
			return verdict, nil
		}
	}
	return Proceed, nil
}

// GuardOption configures an expression guard.
type GuardOption func(*guardConfig)

type guardConfig struct {
	evaluator Evaluator
	explicit  bool
	cache     ProgramCache
	registry  *FunctionRegistry
	field     string
}

// GuardWithEvaluator selects the expression engine. The default is expr. A
// nil evaluator makes ExprGuard fail with ErrNoEvaluator.
func GuardWithEvaluator(evaluator Evaluator) GuardOption {
	return func(cfg *guardConfig) {
		cfg.evaluator = evaluator
		cfg.explicit = true
	}
}

// GuardWithProgramCache shares compiled programs between guards.
func GuardWithProgramCache(cache ProgramCache) GuardOption {
	return func(cfg *guardConfig) {
		cfg.cache = cache
	}
}

// GuardWithFunctionRegistry replaces the default function registry used by
// the built-in expr engine.
func GuardWithFunctionRegistry(registry *FunctionRegistry) GuardOption {
	return func(cfg *guardConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// GuardWithField labels evaluation errors with the owning field.
func GuardWithField(field string) GuardOption {
	return func(cfg *guardConfig) {
		cfg.field = field
	}
}

// ExprGuard compiles expression once and proceeds when it evaluates to true
// against the tuple, returning onFalse otherwise. Argument values are bound
// by name; named scalar types are unwrapped and nil pointers become nil.
func ExprGuard(expression string, onFalse Verdict, opts ...GuardOption) (Guard, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("reactive: guard expression must not be empty")
	}
	cfg := guardConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	evaluator := cfg.evaluator
	if evaluator == nil && !cfg.explicit {
		registry := cfg.registry
		if registry == nil {
			registry = DefaultFunctionRegistry()
		}
		exprOpts := []ExprEvaluatorOption{ExprWithFunctionRegistry(registry)}
		if cfg.cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.cache))
		}
		evaluator = NewExprEvaluator(exprOpts...)
	}
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engineName(evaluator), expression, cfg.field, err)
	}
	return &exprGuard{
		engine:     engineName(evaluator),
		expression: expression,
		rule:       rule,
		onFalse:    onFalse,
		field:      cfg.field,
	}, nil
}

// MustExprGuard is ExprGuard for statically known expressions; it panics on
// compile errors.
func MustExprGuard(expression string, onFalse Verdict, opts ...GuardOption) Guard {
	guard, err := ExprGuard(expression, onFalse, opts...)
	if err != nil {
		panic(err)
	}
	return guard
}

type exprGuard struct {
	engine     string
	expression string
	rule       CompiledRule
	onFalse    Verdict
	field      string
}

func (g *exprGuard) Check(args Args) (Verdict, error) {
	ctx := RuleContext{Args: args, Field: g.field}
	result, err := g.rule.Evaluate(ctx)
	if err != nil {
		return Hold, wrapEvaluationError(g.engine, g.expression, g.field, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return Hold, wrapEvaluationError(g.engine, g.expression, g.field, fmt.Errorf("%w, got %T", ErrGuardResult, result))
	}
	if ok {
		return Proceed, nil
	}
	return g.onFalse, nil
}
