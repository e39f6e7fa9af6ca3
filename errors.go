package reactive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEvaluator indicates an expression guard was built without an engine.
	ErrNoEvaluator = errors.New("reactive: evaluator not configured")
	// ErrDisposed is returned by operations on a disposed model.
	ErrDisposed = errors.New("reactive: model disposed")
	// ErrStarted indicates loaders were registered after Start.
	ErrStarted = errors.New("reactive: model already started")
	// ErrGuardResult indicates a guard expression did not produce a boolean.
	ErrGuardResult = errors.New("reactive: guard expression must return a bool")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Field  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("reactive: %s evaluator %s field=%s: %v", e.Engine, describeExpression(e.Expr), e.Field, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LoadError records a failed fetch for one loader generation.
type LoadError struct {
	Field      string
	Generation uint64
	Err        error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("reactive: load %q generation=%d: %v", e.Field, e.Generation, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "reactive:") {
		return err
	}
	return fmt.Errorf("reactive: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, field string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Field == "" {
			evalErr.Field = field
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Field:  field,
		Err:    err,
	}
}
