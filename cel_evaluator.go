package reactive

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache shares checked programs between evaluators.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes registry functions taking one or two
// arguments.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

// celEvaluator runs guard expressions with cel-go. CEL type-checks against
// declared variables, so a program is built per distinct set of argument
// names; referencing an argument the tuple lacks is an evaluation error.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile checks the syntax eagerly; type checking waits for the first tuple.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	return &celCompiledRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) program(expression string, names []string, local *sync.Map) (celgo.Program, error) {
	key := "cel:" + expression + "|" + strings.Join(names, ",")
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	} else if cached, ok := local.Load(key); ok {
		return cached.(celgo.Program), nil
	}

	opts := make([]celgo.EnvOption, 0, len(names)+8)
	for _, name := range names {
		if name == "now" {
			opts = append(opts, celgo.Variable(name, celgo.TimestampType))
			continue
		}
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	opts = append(opts, e.functions()...)
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	} else {
		local.Store(key, program)
	}
	return program, nil
}

func (e *celEvaluator) functions() []celgo.EnvOption {
	if e.registry == nil {
		return nil
	}
	registry := e.registry
	var opts []celgo.EnvOption
	for _, name := range registry.Names() {
		fn := name
		opts = append(opts, celgo.Function(fn,
			celgo.Overload(fn+"_dyn", []*celgo.Type{celgo.DynType}, celgo.DynType,
				celgo.UnaryBinding(func(arg ref.Val) ref.Val {
					return celResult(registry.Call(fn, celArg(arg)))
				})),
			celgo.Overload(fn+"_dyn_dyn", []*celgo.Type{celgo.DynType, celgo.DynType}, celgo.DynType,
				celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return celResult(registry.Call(fn, celArg(lhs), celArg(rhs)))
				})),
		))
	}
	return opts
}

func celArg(value ref.Val) any {
	if value == nil || value.Type() == types.NullType {
		return nil
	}
	if list, ok := value.(traits.Lister); ok {
		native, err := list.ConvertToNative(reflect.TypeOf([]any{}))
		if err == nil {
			return native
		}
	}
	return value.Value()
}

func celResult(value any, err error) ref.Val {
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if value == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(value)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	programs   sync.Map
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vars := ctx.variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	program, err := r.evaluator.program(r.expression, names, &r.programs)
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.fieldLabel(), err)
	}
	out, _, err := program.Eval(vars)
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.fieldLabel(), err)
	}
	return out.Value(), nil
}
