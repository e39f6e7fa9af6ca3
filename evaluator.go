package reactive

import (
	"math"
	"reflect"
	"time"
)

// RuleContext is the input of one guard evaluation. Expressions see every
// argument by name plus the builtins now and field.
type RuleContext struct {
	Args  Args
	Field string
	Now   time.Time
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	return ctx
}

func (ctx RuleContext) fieldLabel() string {
	if ctx.Field != "" {
		return ctx.Field
	}
	return "unknown"
}

// variables returns the normalized arguments with the builtins added. An
// argument named like a builtin wins.
func (ctx RuleContext) variables() map[string]any {
	vars := normalizeArgs(ctx.Args)
	if _, ok := vars["now"]; !ok {
		vars["now"] = ctx.Now
	}
	if _, ok := vars["field"]; !ok {
		vars["field"] = ctx.Field
	}
	return vars
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// engineNamer is implemented by the built-in evaluators.
type engineNamer interface {
	engine() string
}

func engineName(e Evaluator) string {
	if named, ok := e.(engineNamer); ok {
		return named.engine()
	}
	if e == nil {
		return "unknown"
	}
	return "custom"
}

// normalizeArgs rewrites named scalar types to their builtin kinds and
// dereferences pointers so expression engines see plain values.
func normalizeArgs(args Args) map[string]any {
	out := make(map[string]any, len(args)+2)
	for key, value := range args {
		out[key] = normalizeValue(reflect.ValueOf(value))
	}
	return out
}

func normalizeValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u)
		}
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		if rv.CanInterface() {
			return rv.Interface()
		}
		return nil
	}
}
